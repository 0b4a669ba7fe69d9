package timex

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestSpinRunsToCompletion(t *testing.T) {
	before := spinSink.Load()
	Spin{Iterations: 1000}.Wait()
	if got := spinSink.Load() - before; got != 1000 {
		t.Fatalf("spun %d times, want 1000", got)
	}
	Spin{}.Wait()
}

func TestClockDelaySleepsOnePeriod(t *testing.T) {
	fc := clockwork.NewFakeClock()
	d := ClockDelay{Clock: fc, Period: 250 * time.Millisecond}

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()

	fc.BlockUntil(1)
	fc.Advance(249 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("returned before the period elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	fc.Advance(time.Millisecond)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("did not return after the period")
	}
}

func TestClockDelayZeroPeriod(t *testing.T) {
	ClockDelay{Clock: clockwork.NewFakeClock()}.Wait()
}

func TestFunc(t *testing.T) {
	n := 0
	var d Delay = Func(func() { n++ })
	d.Wait()
	d.Wait()
	if n != 2 {
		t.Fatalf("n = %d", n)
	}
}
