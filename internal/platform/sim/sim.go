// Package sim is an in-memory platform for host builds and tests. Every
// slot is a periph gpiotest pin, so levels, pulls and the synthesised clock
// can be inspected the same way a periph driver test would.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"lampring/internal/core"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// Mode is the electrical role the simulator believes a slot has.
type Mode uint8

const (
	ModeUnconfigured Mode = iota
	ModeOutput
	ModeAltFunc
)

func (m Mode) String() string {
	switch m {
	case ModeOutput:
		return "output"
	case ModeAltFunc:
		return "alt_func"
	default:
		return "unconfigured"
	}
}

// Op names used in the journal and for fault injection.
const (
	OpActivate     = "activate"
	OpDeactivate   = "deactivate"
	OpConfigureOut = "configure_output"
	OpConfigureAlt = "configure_alt_func"
	OpReset        = "reset"
	OpWrite        = "write"
)

const defaultBankWidth = 16

// Event is one journal entry.
type Event struct {
	Op    string
	Port  core.PortID
	Ref   core.PinRef
	Level gpio.Level
}

type bank struct {
	active bool
	pins   []*gpiotest.Pin
	modes  []Mode
}

// Platform implements core.Platform.
type Platform struct {
	mu      sync.Mutex
	width   int
	banks   map[core.PortID]*bank
	journal []Event
	faults  map[string]error
}

var _ core.Platform = (*Platform)(nil)

// New returns a simulator whose banks are width pins wide (16 if <= 0).
func New(width int) *Platform {
	if width <= 0 {
		width = defaultBankWidth
	}
	return &Platform{
		width:  width,
		banks:  make(map[core.PortID]*bank),
		faults: make(map[string]error),
	}
}

// FailNext makes the next call of op return err.
func (s *Platform) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// caller holds lock
func (s *Platform) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return nil
}

// caller holds lock
func (s *Platform) slot(p core.PinRef) (*bank, error) {
	b := s.banks[p.Port]
	if b == nil || !b.active {
		return nil, fmt.Errorf("sim: port %s not active", p.Port)
	}
	if p.Index < 0 || p.Index >= len(b.pins) {
		return nil, fmt.Errorf("sim: %s out of range", p)
	}
	return b, nil
}

func (s *Platform) ActivatePort(id core.PortID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpActivate); err != nil {
		return err
	}
	b := s.banks[id]
	if b != nil && b.active {
		return fmt.Errorf("sim: port %s already active", id)
	}
	if b == nil {
		b = &bank{pins: make([]*gpiotest.Pin, s.width), modes: make([]Mode, s.width)}
		for i := range b.pins {
			ref := core.PinRef{Port: id, Index: i}
			b.pins[i] = &gpiotest.Pin{N: ref.String(), Num: i, Fn: "In", P: gpio.Float}
		}
		s.banks[id] = b
	}
	b.active = true
	s.journal = append(s.journal, Event{Op: OpActivate, Port: id})
	return nil
}

func (s *Platform) DeactivatePort(id core.PortID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpDeactivate); err != nil {
		return err
	}
	b := s.banks[id]
	if b == nil || !b.active {
		return fmt.Errorf("sim: port %s not active", id)
	}
	for i, m := range b.modes {
		if m != ModeUnconfigured {
			return fmt.Errorf("sim: port %s gated with %s still %s", id, core.PinRef{Port: id, Index: i}, m)
		}
	}
	b.active = false
	s.journal = append(s.journal, Event{Op: OpDeactivate, Port: id})
	return nil
}

func (s *Platform) ConfigureOutput(p core.PinRef, cfg core.OutputConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpConfigureOut); err != nil {
		return err
	}
	b, err := s.slot(p)
	if err != nil {
		return err
	}
	pin := b.pins[p.Index]
	pin.Fn = "Out"
	pin.Lock()
	pin.P = cfg.Pull
	pin.Unlock()
	if err := pin.Out(gpio.Low); err != nil {
		return err
	}
	b.modes[p.Index] = ModeOutput
	s.journal = append(s.journal, Event{Op: OpConfigureOut, Port: p.Port, Ref: p})
	return nil
}

func (s *Platform) ConfigureAltFunc(p core.PinRef, cfg core.AltFuncConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpConfigureAlt); err != nil {
		return err
	}
	b, err := s.slot(p)
	if err != nil {
		return err
	}
	pin := b.pins[p.Index]
	pin.Fn = cfg.Func.Name
	pin.Lock()
	pin.P = cfg.Pull
	pin.Unlock()
	// Model the peripheral driving the pin as a 50% duty square wave.
	if err := pin.PWM(gpio.DutyHalf, cfg.Func.Freq); err != nil {
		return err
	}
	b.modes[p.Index] = ModeAltFunc
	s.journal = append(s.journal, Event{Op: OpConfigureAlt, Port: p.Port, Ref: p})
	return nil
}

func (s *Platform) Reset(p core.PinRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpReset); err != nil {
		return err
	}
	b, err := s.slot(p)
	if err != nil {
		return err
	}
	pin := b.pins[p.Index]
	pin.Fn = "In"
	if err := pin.PWM(0, 0); err != nil {
		return err
	}
	if err := pin.In(gpio.Float, gpio.NoEdge); err != nil {
		return err
	}
	pin.Lock()
	pin.L = gpio.Low
	pin.Unlock()
	b.modes[p.Index] = ModeUnconfigured
	s.journal = append(s.journal, Event{Op: OpReset, Port: p.Port, Ref: p})
	return nil
}

func (s *Platform) Write(p core.PinRef, l gpio.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpWrite); err != nil {
		return err
	}
	b, err := s.slot(p)
	if err != nil {
		return err
	}
	if b.modes[p.Index] != ModeOutput {
		return errors.New("sim: write to " + p.String() + " which is " + b.modes[p.Index].String())
	}
	if err := b.pins[p.Index].Out(l); err != nil {
		return err
	}
	s.journal = append(s.journal, Event{Op: OpWrite, Port: p.Port, Ref: p, Level: l})
	return nil
}

// ---- Inspection ----

// Pin exposes the fake pin behind ref, or nil if the bank was never activated.
func (s *Platform) Pin(ref core.PinRef) *gpiotest.Pin {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.banks[ref.Port]
	if b == nil || ref.Index < 0 || ref.Index >= len(b.pins) {
		return nil
	}
	return b.pins[ref.Index]
}

func (s *Platform) Level(ref core.PinRef) gpio.Level {
	if p := s.Pin(ref); p != nil {
		return p.Read()
	}
	return gpio.Low
}

func (s *Platform) Mode(ref core.PinRef) Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.banks[ref.Port]
	if b == nil || ref.Index < 0 || ref.Index >= len(b.modes) {
		return ModeUnconfigured
	}
	return b.modes[ref.Index]
}

func (s *Platform) Active(id core.PortID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.banks[id]
	return b != nil && b.active
}

// Journal returns a copy of every successful platform call so far.
func (s *Platform) Journal() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.journal))
	copy(out, s.journal)
	return out
}
