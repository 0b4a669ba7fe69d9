package timex

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// Delay is one tick's pause. Implementations block until done and cannot
// be cancelled.
type Delay interface {
	Wait()
}

// Spin is a busy-wait of a fixed number of iterations. It has no time
// meaning; it only keeps the lamps visible on a bare core.
type Spin struct {
	Iterations int
}

var spinSink atomic.Uint32 // keeps the loop from being optimised away

func (s Spin) Wait() {
	for i := 0; i < s.Iterations; i++ {
		spinSink.Add(1)
	}
}

// ClockDelay sleeps Period on Clock, for hosts where a spin is invisible.
type ClockDelay struct {
	Clock  clockwork.Clock
	Period time.Duration
}

func (d ClockDelay) Wait() {
	if d.Period <= 0 {
		return
	}
	c := d.Clock
	if c == nil {
		c = clockwork.NewRealClock()
	}
	c.Sleep(d.Period)
}

// Func adapts a plain function.
type Func func()

func (f Func) Wait() { f() }
