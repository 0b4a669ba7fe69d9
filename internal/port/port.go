// Package port owns the per-bank pin bookkeeping: which slots are claimed,
// which handles are configured, and whether the bank may be powered down.
//
// A Port is not safe for concurrent use. It is owned by exactly one
// goroutine, and handle exclusivity is what keeps two writers off a pin.
package port

import (
	"strconv"

	"lampring/errcode"
	"lampring/internal/core"
	"lampring/internal/logx"
)

type slot struct {
	claimed bool
	gen     uint32 // bumped on every claim; stale handles fail to release
}

// Port is one activated I/O bank.
type Port struct {
	id     core.PortID
	plat   core.Platform
	slots  []slot
	active bool
	faults int
}

// Activate powers up bank id on plat and returns it with width free slots.
func Activate(plat core.Platform, id core.PortID, width int) (*Port, error) {
	const op = "port.activate"
	if plat == nil || width <= 0 {
		return nil, errcode.New(errcode.InvalidParams, op, "need a platform and a positive width")
	}
	if err := plat.ActivatePort(id); err != nil {
		return nil, errcode.Wrap(errcode.MapDriverErr(err), op, err)
	}
	logx.LogDebug(logx.ComponentPort, "activated", "port", string(id), "width", width)
	return &Port{
		id:     id,
		plat:   plat,
		slots:  make([]slot, width),
		active: true,
	}, nil
}

func (p *Port) ID() core.PortID { return p.id }
func (p *Port) Width() int      { return len(p.slots) }
func (p *Port) Active() bool    { return p.active }

// Faults counts platform write failures swallowed by OutputPin.Write.
func (p *Port) Faults() int { return p.faults }

// Claimed reports how many slots are currently out on loan.
func (p *Port) Claimed() int {
	n := 0
	for _, s := range p.slots {
		if s.claimed {
			n++
		}
	}
	return n
}

// Claim hands out exclusive ownership of slot index.
func (p *Port) Claim(index int) (*PinHandle, error) {
	const op = "port.claim"
	if !p.active {
		return nil, errcode.New(errcode.PortInactive, op, string(p.id))
	}
	if index < 0 || index >= len(p.slots) {
		return nil, errcode.New(errcode.UnknownPin, op, p.ref(index).String())
	}
	s := &p.slots[index]
	if s.claimed {
		return nil, errcode.New(errcode.AlreadyClaimed, op, p.ref(index).String())
	}
	s.claimed = true
	s.gen++
	logx.LogDebug(logx.ComponentPort, "claimed", "pin", p.ref(index).String())
	return &PinHandle{port: p, index: index, gen: s.gen, state: stateUnconfigured}, nil
}

// Release takes back a torn-down handle. The handle is dead afterwards.
func (p *Port) Release(h *PinHandle) error {
	const op = "port.release"
	if h == nil || h.port != p {
		return errcode.New(errcode.NotOwnedHere, op, "handle belongs to another port")
	}
	s := &p.slots[h.index]
	if !s.claimed || s.gen != h.gen || h.state == stateReleased {
		return errcode.New(errcode.NotOwnedHere, op, h.String()+" is not claimed by this handle")
	}
	if h.state != stateUnconfigured {
		return errcode.New(errcode.NotOwnedHere, op, h.String()+" is still configured")
	}
	s.claimed = false
	h.state = stateReleased
	logx.LogDebug(logx.ComponentPort, "released", "pin", h.String())
	return nil
}

// Deactivate powers the bank down. Every claimed slot must have been
// released first.
func (p *Port) Deactivate() error {
	const op = "port.deactivate"
	if !p.active {
		return errcode.New(errcode.PortInactive, op, string(p.id))
	}
	if n := p.Claimed(); n > 0 {
		return errcode.New(errcode.PortBusy, op, strconv.Itoa(n)+" slot(s) still claimed on "+string(p.id))
	}
	if err := p.plat.DeactivatePort(p.id); err != nil {
		return errcode.Wrap(errcode.MapDriverErr(err), op, err)
	}
	p.active = false
	logx.LogDebug(logx.ComponentPort, "deactivated", "port", string(p.id), "faults", p.faults)
	return nil
}

func (p *Port) ref(index int) core.PinRef { return core.PinRef{Port: p.id, Index: index} }
