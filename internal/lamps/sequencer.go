package lamps

import (
	"errors"

	"lampring/errcode"
	"lampring/internal/core"
	"lampring/internal/logx"
	"lampring/internal/port"

	"periph.io/x/conn/v3/gpio"
)

// Lamp binds one configured output to its role for the sequencer's life.
type Lamp struct {
	Role Role
	Pin  *port.OutputPin
}

// Wiring says which slot of the lamp bank drives which role.
type Wiring struct {
	Index int
	Role  Role
}

// Sequencer owns the eight lamp outputs and the active position.
type Sequencer struct {
	lamps  []Lamp
	active Role
	lit    Role
	done   bool
}

// New binds lamps and starts the ring at start. Every role and every pin
// must appear exactly once.
func New(lamps []Lamp, start Role) (*Sequencer, error) {
	const op = "lamps.new"
	if err := checkRoles(op, len(lamps), func(i int) Role { return lamps[i].Role }); err != nil {
		return nil, err
	}
	pins := make(map[*port.OutputPin]bool, len(lamps))
	for _, l := range lamps {
		if l.Pin == nil {
			return nil, errcode.New(errcode.InvalidParams, op, l.Role.String()+" has no pin")
		}
		if pins[l.Pin] {
			return nil, errcode.New(errcode.InvalidParams, op, l.Role.String()+" shares a pin with another lamp")
		}
		pins[l.Pin] = true
	}
	if !start.Valid() {
		return nil, errcode.New(errcode.InvalidParams, op, "start role "+start.String()+" is not on the ring")
	}
	bound := make([]Lamp, len(lamps))
	copy(bound, lamps)
	return &Sequencer{lamps: bound, active: start}, nil
}

func checkRoles(op string, n int, role func(int) Role) error {
	if n != len(Roles) {
		return errcode.New(errcode.InvalidParams, op, "need exactly eight lamps")
	}
	var seen [LD10 + 1]bool
	for i := 0; i < n; i++ {
		r := role(i)
		if !r.Valid() {
			return errcode.New(errcode.InvalidParams, op, r.String()+" is not a lamp role")
		}
		if seen[r] {
			return errcode.New(errcode.InvalidParams, op, r.String()+" bound twice")
		}
		seen[r] = true
	}
	return nil
}

// Wire claims and configures the lamp outputs on p and binds them. On error
// the pins already claimed stay claimed; startup is expected to abort.
func Wire(p *port.Port, wiring []Wiring, out core.OutputConfig, start Role) (*Sequencer, error) {
	if err := checkRoles("lamps.wire", len(wiring), func(i int) Role { return wiring[i].Role }); err != nil {
		return nil, err
	}
	lamps := make([]Lamp, 0, len(wiring))
	for _, w := range wiring {
		h, err := p.Claim(w.Index)
		if err != nil {
			return nil, err
		}
		pin, err := port.ConfigureAsOutput(h, out.Pull, out.Drive, out.Speed)
		if err != nil {
			return nil, err
		}
		lamps = append(lamps, Lamp{Role: w.Role, Pin: pin})
	}
	logx.LogInfo(logx.ComponentLamps, "ring wired", "port", string(p.ID()), "start", start.String())
	return New(lamps, start)
}

// Active is the role the next Advance lights.
func (s *Sequencer) Active() Role { return s.active }

// Lit is the role lit by the last Advance, zero before the first.
func (s *Sequencer) Lit() Role { return s.lit }

// Lamps returns the bindings in wiring order.
func (s *Sequencer) Lamps() []Lamp {
	out := make([]Lamp, len(s.lamps))
	copy(out, s.lamps)
	return out
}

// Advance lights the active lamp, darkens the other seven and moves the
// active position one step round the ring.
func (s *Sequencer) Advance() error {
	if s.done {
		return errcode.New(errcode.Terminated, "lamps.advance", "sequencer torn down")
	}
	for _, l := range s.lamps {
		l.Pin.Write(gpio.Level(l.Role == s.active))
	}
	s.lit = s.active
	s.active = s.active.Next()
	logx.LogDebug(logx.ComponentLamps, "advance", "lit", s.lit.String(), "next", s.active.String())
	return nil
}

// Teardown unconfigures every lamp and returns all eight handles for
// release. A platform fault on one lamp does not stop the others; the
// handles of lamps that failed are omitted and the faults are joined.
func (s *Sequencer) Teardown() ([]*port.PinHandle, error) {
	if s.done {
		return nil, errcode.New(errcode.NotConfigured, "lamps.teardown", "sequencer already torn down")
	}
	s.done = true
	handles := make([]*port.PinHandle, 0, len(s.lamps))
	var errs []error
	for _, l := range s.lamps {
		h, err := l.Pin.Teardown()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		handles = append(handles, h)
	}
	return handles, errors.Join(errs...)
}

// Return tears the ring down and releases every handle to p.
func (s *Sequencer) Return(p *port.Port) error {
	handles, err := s.Teardown()
	for _, h := range handles {
		if rerr := p.Release(h); rerr != nil && err == nil {
			err = rerr
		}
	}
	if err == nil {
		logx.LogInfo(logx.ComponentLamps, "ring returned", "port", string(p.ID()))
	}
	return err
}
