// Package program owns every resource of the lamp firmware and runs its
// lifecycle: initialize, a bounded number of ticks, then shutdown in the
// reverse order of acquisition.
package program

import (
	"context"
	"errors"
	"strconv"

	"lampring/errcode"
	"lampring/internal/boards"
	"lampring/internal/config"
	"lampring/internal/core"
	"lampring/internal/events"
	"lampring/internal/lamps"
	"lampring/internal/logx"
	"lampring/internal/mco"
	"lampring/internal/port"
	"lampring/x/timex"

	"github.com/jonboulle/clockwork"
)

type State uint8

const (
	Initializing State = iota
	Running
	ShuttingDown
	Terminated
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting_down"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// Status is a point-in-time view of the program.
type Status struct {
	State  State
	Ticks  int
	Lit    lamps.Role // zero before the first tick
	Active lamps.Role
	Faults int // platform write faults across both ports
}

// Program is not safe for concurrent use. Observers on other goroutines
// should subscribe to the event hub instead.
type Program struct {
	layout boards.Layout
	cfg    config.Config
	delay  timex.Delay
	hub    *events.Hub

	clockPort *port.Port
	lampPort  *port.Port // same as clockPort on shared-bank boards
	clock     *mco.Controller
	ring      *lamps.Sequencer

	state State
	ticks int
}

// DelayFor picks the tick delay for cfg: a clock sleep when TickPeriod is
// set, otherwise a spin. A nil clk means the wall clock.
func DelayFor(cfg config.Config, clk clockwork.Clock) timex.Delay {
	if cfg.TickPeriod > 0 {
		if clk == nil {
			clk = clockwork.NewRealClock()
		}
		return timex.ClockDelay{Clock: clk, Period: cfg.TickPeriod}
	}
	return timex.Spin{Iterations: cfg.SpinIterations}
}

// Initialize acquires the clock port and routes the clock output, then
// acquires the lamp port and wires the ring. Any failure aborts and
// returns no program; pins claimed before the failure are not returned.
// A nil delay means DelayFor(cfg, nil); hub may be nil.
func Initialize(plat core.Platform, layout boards.Layout, cfg config.Config, delay timex.Delay, hub *events.Hub) (*Program, error) {
	if plat == nil {
		return nil, errcode.New(errcode.InvalidParams, "program.init", "no platform")
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if delay == nil {
		delay = DelayFor(cfg, nil)
	}
	p := &Program{layout: layout, cfg: cfg, delay: delay, hub: hub}
	p.publishState()
	logx.LogInfo(logx.ComponentProgram, "initializing", "board", layout.Name, "ticks", cfg.TickBound)

	var err error
	if p.clockPort, err = port.Activate(plat, layout.ClockPort, layout.ClockWidth); err != nil {
		return nil, err
	}
	if p.clock, err = mco.New(p.clockPort, layout.ClockIndex, layout.Clock); err != nil {
		return nil, err
	}
	if layout.SharedPort() {
		p.lampPort = p.clockPort
	} else if p.lampPort, err = port.Activate(plat, layout.LampPort, layout.LampWidth); err != nil {
		return nil, err
	}
	if p.ring, err = lamps.Wire(p.lampPort, layout.Lamps, layout.LampOut, cfg.StartRole); err != nil {
		return nil, err
	}

	p.setState(Running)
	return p, nil
}

func (p *Program) State() State { return p.state }
func (p *Program) Ticks() int   { return p.ticks }

func (p *Program) Status() Status {
	st := Status{State: p.state, Ticks: p.ticks}
	if p.ring != nil {
		st.Lit = p.ring.Lit()
		st.Active = p.ring.Active()
	}
	st.Faults = p.faults()
	return st
}

func (p *Program) faults() int {
	n := 0
	if p.clockPort != nil {
		n += p.clockPort.Faults()
	}
	if p.lampPort != nil && p.lampPort != p.clockPort {
		n += p.lampPort.Faults()
	}
	return n
}

// Step runs one tick: advance the ring and wait one delay. Once the tick
// bound is reached it moves to ShuttingDown without advancing. Steps while
// ShuttingDown do nothing. A write fault during the advance may leave zero
// or two lamps lit, so Step reports it as hardware_passthrough without
// counting the tick; Run then shuts down.
func (p *Program) Step() error {
	switch p.state {
	case Running:
	case Terminated:
		return errcode.New(errcode.Terminated, "program.step", "program terminated")
	default:
		return nil
	}
	if p.ticks >= p.cfg.TickBound {
		p.setState(ShuttingDown)
		return nil
	}
	before := p.faults()
	if err := p.ring.Advance(); err != nil {
		return err
	}
	if n := p.faults() - before; n > 0 {
		logx.LogError(logx.ComponentProgram, "lamp write failed", "lit", p.ring.Lit().String(), "faults", n)
		return errcode.New(errcode.HardwarePassthrough, "program.step",
			strconv.Itoa(n)+" lamp write(s) failed, ring state unknown")
	}
	p.publish(events.TopicLit, p.ring.Lit())
	p.delay.Wait()
	p.ticks++
	return nil
}

// Shutdown returns the lamp pins and deactivates their port, then returns
// the clock pin and deactivates its port. A shared bank is deactivated once,
// after both. Faults do not stop later steps; they are joined and the
// program ends Terminated either way. Unlike a fail-fast teardown, a lamp
// side failure still lets the clock pin and its port come down.
func (p *Program) Shutdown() error {
	if p.state == Terminated {
		return errcode.New(errcode.Terminated, "program.shutdown", "program terminated")
	}
	if p.state != ShuttingDown {
		p.setState(ShuttingDown)
	}

	var errs []error
	if err := p.ring.Return(p.lampPort); err != nil {
		errs = append(errs, err)
	}
	if p.lampPort != p.clockPort {
		if err := p.lampPort.Deactivate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.clock.Return(p.clockPort); err != nil {
		errs = append(errs, err)
	}
	if err := p.clockPort.Deactivate(); err != nil {
		errs = append(errs, err)
	}

	p.setState(Terminated)
	err := errors.Join(errs...)
	if err != nil {
		logx.LogError(logx.ComponentProgram, "shutdown incomplete", "error", err)
	}
	return err
}

// Run steps until the program leaves Running, then shuts down. ctx is
// checked between ticks only; a cancelled run still shuts down fully. The
// first error wins.
func (p *Program) Run(ctx context.Context) error {
	var first error
	for p.state == Running {
		if err := ctx.Err(); err != nil {
			logx.LogWarn(logx.ComponentProgram, "run cancelled", "ticks", p.ticks)
			first = err
			break
		}
		if err := p.Step(); err != nil {
			first = err
			break
		}
	}
	if err := p.Shutdown(); err != nil && first == nil {
		first = err
	}
	return first
}

func (p *Program) setState(s State) {
	p.state = s
	p.publishState()
	logx.LogInfo(logx.ComponentProgram, "state", "state", s.String(), "ticks", p.ticks)
}

func (p *Program) publishState() { p.publish(events.TopicState, p.state) }

func (p *Program) publish(topic string, payload any) {
	if p.hub != nil {
		p.hub.Publish(topic, payload)
	}
}
