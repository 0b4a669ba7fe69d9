package lamps

import (
	"errors"
	"testing"

	"lampring/errcode"
	"lampring/internal/core"
	"lampring/internal/platform/sim"
	"lampring/internal/port"

	"periph.io/x/conn/v3/gpio"
)

// Discovery wiring: PE8..PE15.
var discovery = []Wiring{
	{8, LD4}, {9, LD3}, {10, LD5}, {11, LD7},
	{12, LD9}, {13, LD10}, {14, LD8}, {15, LD6},
}

var lampOut = core.OutputConfig{Pull: gpio.Float, Drive: core.PushPull, Speed: core.SpeedLow}

func wired(t *testing.T) (*Sequencer, *port.Port, *sim.Platform) {
	t.Helper()
	plat := sim.New(16)
	pe, err := port.Activate(plat, "E", 16)
	if err != nil {
		t.Fatal(err)
	}
	s, err := Wire(pe, discovery, lampOut, LD3)
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	return s, pe, plat
}

// highRoles reports which roles the platform shows High.
func highRoles(plat *sim.Platform) []Role {
	var out []Role
	for _, w := range discovery {
		if plat.Level(core.PinRef{Port: "E", Index: w.Index}) == gpio.High {
			out = append(out, w.Role)
		}
	}
	return out
}

func TestRingIsSingleCycle(t *testing.T) {
	want := []Role{LD3, LD5, LD7, LD9, LD10, LD8, LD6, LD4}
	got := Ring(LD3)
	if len(got) != len(want) {
		t.Fatalf("ring = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ring[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	// Every start point yields the same single cycle of period eight.
	for _, r := range Roles {
		if n := len(Ring(r)); n != 8 {
			t.Fatalf("ring from %s has period %d", r, n)
		}
		if r.Next() == r {
			t.Fatalf("%s is a fixed point", r)
		}
	}
	if Ring(Role(2)) != nil || Role(11).Next() != Role(11) {
		t.Fatal("off-ring roles must not step")
	}
}

func TestAdvanceCycleLaw(t *testing.T) {
	s, _, plat := wired(t)
	want := []Role{LD3, LD5, LD7, LD9, LD10, LD8, LD6, LD4, LD3}
	for i, r := range want {
		if s.Active() != r {
			t.Fatalf("before call %d active = %s, want %s", i+1, s.Active(), r)
		}
		if err := s.Advance(); err != nil {
			t.Fatal(err)
		}
		if s.Lit() != r {
			t.Fatalf("call %d lit %s, want %s", i+1, s.Lit(), r)
		}
		high := highRoles(plat)
		if len(high) != 1 || high[0] != r {
			t.Fatalf("call %d: high pins = %v, want exactly [%s]", i+1, high, r)
		}
	}
}

func TestSingleLampFromAnyStart(t *testing.T) {
	for _, start := range Roles {
		plat := sim.New(16)
		pe, _ := port.Activate(plat, "E", 16)
		s, err := Wire(pe, discovery, lampOut, start)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 20; i++ {
			_ = s.Advance()
			lit := 0
			for _, l := range s.Lamps() {
				if l.Pin.Level() == gpio.High {
					lit++
				}
			}
			if lit != 1 {
				t.Fatalf("start %s step %d: %d lamps lit", start, i, lit)
			}
		}
	}
}

func TestNewValidatesBindings(t *testing.T) {
	_, err := Wire(nil, discovery[:7], lampOut, LD3)
	if errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("short wiring: %v", err)
	}

	dup := append([]Wiring(nil), discovery...)
	dup[7].Role = LD3
	_, err = Wire(nil, dup, lampOut, LD3)
	if errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("duplicate role: %v", err)
	}

	bad := append([]Wiring(nil), discovery...)
	bad[0].Role = Role(1)
	_, err = Wire(nil, bad, lampOut, LD3)
	if errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("bad role: %v", err)
	}

	lamps := make([]Lamp, 0, 8)
	for _, r := range Roles {
		lamps = append(lamps, Lamp{Role: r})
	}
	if _, err := New(lamps, LD3); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("nil pins: %v", err)
	}

	s, _, _ := wired(t)
	shared := s.Lamps()
	shared[1].Pin = shared[0].Pin
	if _, err := New(shared, LD3); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("one pin bound to two roles: %v", err)
	}
	if _, err := New(s.Lamps(), LD3); err != nil {
		t.Fatalf("distinct pins rejected: %v", err)
	}
}

func TestWireBadStartRole(t *testing.T) {
	plat := sim.New(16)
	pe, _ := port.Activate(plat, "E", 16)
	if _, err := Wire(pe, discovery, lampOut, Role(0)); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("got %v", err)
	}
}

func TestWireStopsOnClaimConflict(t *testing.T) {
	plat := sim.New(16)
	pe, _ := port.Activate(plat, "E", 16)
	if _, err := pe.Claim(12); err != nil {
		t.Fatal(err)
	}
	_, err := Wire(pe, discovery, lampOut, LD3)
	if errcode.Of(err) != errcode.AlreadyClaimed {
		t.Fatalf("got %v, want already_claimed", err)
	}
}

func TestReturnFreesPortAndTerminates(t *testing.T) {
	s, pe, plat := wired(t)
	_ = s.Advance()

	if errcode.Of(pe.Deactivate()) != errcode.PortBusy {
		t.Fatal("port deactivated with lamps attached")
	}
	if err := s.Return(pe); err != nil {
		t.Fatalf("return: %v", err)
	}
	if pe.Claimed() != 0 {
		t.Fatalf("%d slots still claimed", pe.Claimed())
	}
	if err := pe.Deactivate(); err != nil {
		t.Fatal(err)
	}
	for _, w := range discovery {
		if m := plat.Mode(core.PinRef{Port: "E", Index: w.Index}); m != sim.ModeUnconfigured {
			t.Fatalf("slot %d left %s", w.Index, m)
		}
	}
	if errcode.Of(s.Advance()) != errcode.Terminated {
		t.Fatal("advance after teardown allowed")
	}
	if _, err := s.Teardown(); errcode.Of(err) != errcode.NotConfigured {
		t.Fatalf("second teardown: %v", err)
	}
}

func TestTeardownReturnsEveryHandle(t *testing.T) {
	s, _, _ := wired(t)
	handles, err := s.Teardown()
	if err != nil {
		t.Fatal(err)
	}
	if len(handles) != 8 {
		t.Fatalf("got %d handles", len(handles))
	}
	seen := map[int]bool{}
	for _, h := range handles {
		if h.Configured() {
			t.Fatalf("%s still configured", h)
		}
		seen[h.Index()] = true
	}
	for _, w := range discovery {
		if !seen[w.Index] {
			t.Fatalf("slot %d missing from teardown", w.Index)
		}
	}
}

func TestTeardownFaultIsReported(t *testing.T) {
	s, pe, plat := wired(t)
	plat.FailNext(sim.OpReset, errors.New("reset nack"))
	err := s.Return(pe)
	if errcode.Of(err) != errcode.HardwarePassthrough {
		t.Fatalf("got %v", err)
	}
	if pe.Claimed() != 1 {
		t.Fatalf("claimed = %d, want the one faulted lamp", pe.Claimed())
	}
}
