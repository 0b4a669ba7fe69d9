package port

import (
	"lampring/errcode"
	"lampring/internal/core"
	"lampring/internal/logx"

	"periph.io/x/conn/v3/gpio"
)

type pinState uint8

const (
	stateUnconfigured pinState = iota
	stateOutput
	stateAltFunc
	stateReleased
)

func (s pinState) String() string {
	switch s {
	case stateOutput:
		return "output"
	case stateAltFunc:
		return "alt_func"
	case stateReleased:
		return "released"
	default:
		return "unconfigured"
	}
}

// PinHandle is the exclusive claim on one slot. It starts unconfigured and
// must be unconfigured again before it can be released.
type PinHandle struct {
	port  *Port
	index int
	gen   uint32
	state pinState
}

func (h *PinHandle) Ref() core.PinRef { return h.port.ref(h.index) }
func (h *PinHandle) Index() int       { return h.index }
func (h *PinHandle) String() string   { return h.Ref().String() }

// Configured reports whether the handle is currently wrapped by an
// OutputPin or AltFuncPin.
func (h *PinHandle) Configured() bool {
	return h.state == stateOutput || h.state == stateAltFunc
}

// check validates that h may be configured.
func (h *PinHandle) check(op string) error {
	if h == nil || h.port == nil || h.state == stateReleased {
		return errcode.New(errcode.NotOwnedHere, op, "handle is not claimed")
	}
	if h.state != stateUnconfigured {
		return errcode.New(errcode.AlreadyConfigured, op, h.String()+" is "+h.state.String())
	}
	return nil
}

// ---- Output ----

// OutputPin is a slot driven by software.
type OutputPin struct {
	h     *PinHandle
	cfg   core.OutputConfig
	level core.Level
	dead  bool // set by Teardown; the handle may be reconfigured later
}

// ConfigureAsOutput turns an unconfigured handle into an output pin.
// The pin starts Low.
func ConfigureAsOutput(h *PinHandle, pull core.Pull, drive core.DriveType, speed core.Speed) (*OutputPin, error) {
	const op = "port.configure_output"
	if err := h.check(op); err != nil {
		return nil, err
	}
	cfg := core.OutputConfig{Pull: pull, Drive: drive, Speed: speed}
	if err := h.port.plat.ConfigureOutput(h.Ref(), cfg); err != nil {
		return nil, errcode.Wrap(errcode.MapDriverErr(err), op, err)
	}
	h.state = stateOutput
	logx.LogDebug(logx.ComponentPort, "configured output",
		"pin", h.String(), "pull", pull.String(), "drive", drive.String(), "speed", speed.String())
	return &OutputPin{h: h, cfg: cfg, level: gpio.Low}, nil
}

func (o *OutputPin) Ref() core.PinRef          { return o.h.Ref() }
func (o *OutputPin) Config() core.OutputConfig { return o.cfg }

// Level is the last level handed to Write.
func (o *OutputPin) Level() core.Level { return o.level }

// Write drives the pin. Platform failures are counted on the port and
// logged; the caller sees no error. Writes after teardown are dropped.
func (o *OutputPin) Write(l core.Level) {
	if o.dead {
		logx.LogWarn(logx.ComponentPort, "write on unconfigured pin dropped", "pin", o.h.String())
		return
	}
	if err := o.h.port.plat.Write(o.h.Ref(), l); err != nil {
		o.h.port.faults++
		logx.LogWarn(logx.ComponentPort, "write failed", "pin", o.h.String(), "level", l.String(), "err", err)
		return
	}
	o.level = l
}

// Teardown returns the pin to its unconfigured state and hands the claim
// back to the caller for release.
func (o *OutputPin) Teardown() (*PinHandle, error) {
	h, err := teardown(o.h, o.dead, stateOutput, "port.teardown_output")
	if err == nil {
		o.dead = true
	}
	return h, err
}

// ---- Alternate function ----

// AltFuncPin is a slot routed to an internal peripheral; software never
// writes it.
type AltFuncPin struct {
	h    *PinHandle
	cfg  core.AltFuncConfig
	dead bool
}

// ConfigureAsAltFunc routes an unconfigured handle to fn.
func ConfigureAsAltFunc(h *PinHandle, pull core.Pull, fn core.AltFunc) (*AltFuncPin, error) {
	const op = "port.configure_alt_func"
	if err := h.check(op); err != nil {
		return nil, err
	}
	if fn.Name == "" {
		return nil, errcode.New(errcode.InvalidParams, op, "alternate function needs a name")
	}
	cfg := core.AltFuncConfig{Pull: pull, Func: fn}
	if err := h.port.plat.ConfigureAltFunc(h.Ref(), cfg); err != nil {
		return nil, errcode.Wrap(errcode.MapDriverErr(err), op, err)
	}
	h.state = stateAltFunc
	logx.LogDebug(logx.ComponentPort, "configured alt func", "pin", h.String(), "func", fn.Name, "pull", pull.String())
	return &AltFuncPin{h: h, cfg: cfg}, nil
}

func (a *AltFuncPin) Ref() core.PinRef   { return a.h.Ref() }
func (a *AltFuncPin) Func() core.AltFunc { return a.cfg.Func }
func (a *AltFuncPin) Pull() core.Pull    { return a.cfg.Pull }

func (a *AltFuncPin) Teardown() (*PinHandle, error) {
	h, err := teardown(a.h, a.dead, stateAltFunc, "port.teardown_alt_func")
	if err == nil {
		a.dead = true
	}
	return h, err
}

func teardown(h *PinHandle, dead bool, want pinState, op string) (*PinHandle, error) {
	if dead || h.state != want {
		return nil, errcode.New(errcode.NotConfigured, op, h.String()+" is "+h.state.String())
	}
	if err := h.port.plat.Reset(h.Ref()); err != nil {
		return nil, errcode.Wrap(errcode.MapDriverErr(err), op, err)
	}
	h.state = stateUnconfigured
	logx.LogDebug(logx.ComponentPort, "torn down", "pin", h.String())
	return h, nil
}
