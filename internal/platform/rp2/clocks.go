package rp2

import (
	"errors"
	"time"
)

// pulses queued per clock start; at 1 MHz this lasts over an hour.
const clockPulses = 0xFFFF_FFFF

var errClockRunning = errors.New("rp2: clock already running on pin")

// pulser is the part of piolib.Pulsar the clock output uses.
type pulser interface {
	SetPeriod(period time.Duration) error
	TryQueue(count uint32) error
	Stop()
	Pause(disabled bool)
}

type clockGen struct {
	p       pulser
	running bool
}

// clockSet keeps one pulse generator per pin for the life of the platform.
// Building a generator loads its PIO program, which is never unloaded, so a
// pin that is routed, reset and routed again reuses the first one.
type clockSet struct {
	newPulser func(index int) (pulser, error)
	gens      map[int]*clockGen
}

func newClockSet(fn func(index int) (pulser, error)) *clockSet {
	return &clockSet{newPulser: fn, gens: make(map[int]*clockGen)}
}

func (c *clockSet) start(index int, period time.Duration) error {
	g, ok := c.gens[index]
	if !ok {
		p, err := c.newPulser(index)
		if err != nil {
			return err
		}
		g = &clockGen{p: p}
		c.gens[index] = g
	}
	if g.running {
		return errClockRunning
	}
	if err := g.p.SetPeriod(period); err != nil {
		g.p.Pause(true)
		return err
	}
	if err := g.p.TryQueue(clockPulses); err != nil {
		g.p.Stop()
		g.p.Pause(true)
		return err
	}
	g.p.Pause(false)
	g.running = true
	return nil
}

// stop halts the generator on index, reporting whether one was running.
func (c *clockSet) stop(index int) bool {
	g, ok := c.gens[index]
	if !ok || !g.running {
		return false
	}
	g.p.Stop()
	g.p.Pause(true)
	g.running = false
	return true
}
