package boards

import (
	"testing"

	"lampring/errcode"
	"lampring/internal/lamps"
)

func TestKnownLayoutsValidate(t *testing.T) {
	for _, l := range []Layout{F3Discovery, Pico, RaspberryPi, Selected} {
		if err := l.Validate(); err != nil {
			t.Fatalf("%s: %v", l.Name, err)
		}
		if len(l.Lamps) != len(lamps.Roles) {
			t.Fatalf("%s wires %d lamps", l.Name, len(l.Lamps))
		}
		seen := map[lamps.Role]bool{}
		for _, w := range l.Lamps {
			if seen[w.Role] {
				t.Fatalf("%s binds %s twice", l.Name, w.Role)
			}
			seen[w.Role] = true
		}
	}
}

func TestDiscoveryMatchesBoardSilkscreen(t *testing.T) {
	want := map[int]lamps.Role{
		8: lamps.LD4, 9: lamps.LD3, 10: lamps.LD5, 11: lamps.LD7,
		12: lamps.LD9, 13: lamps.LD10, 14: lamps.LD8, 15: lamps.LD6,
	}
	for _, w := range F3Discovery.Lamps {
		if want[w.Index] != w.Role {
			t.Fatalf("PE%d -> %s, want %s", w.Index, w.Role, want[w.Index])
		}
	}
	if F3Discovery.SharedPort() || F3Discovery.ClockPort != "A" || F3Discovery.ClockIndex != 8 {
		t.Fatal("MCO must be PA8 on its own bank")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(l *Layout){
		"zero width":      func(l *Layout) { l.LampWidth = 0 },
		"clock range":     func(l *Layout) { l.ClockIndex = 16 },
		"unnamed clock":   func(l *Layout) { l.Clock.Name = "" },
		"lamp range":      func(l *Layout) { l.Lamps[0].Index = 16 },
		"lamp twice":      func(l *Layout) { l.Lamps[1].Index = l.Lamps[0].Index },
		"shared conflict": func(l *Layout) { l.LampPort = l.ClockPort; l.Lamps[0].Index = l.ClockIndex },
	}
	for name, mutate := range cases {
		l := F3Discovery
		l.Lamps = append([]lamps.Wiring(nil), F3Discovery.Lamps...)
		mutate(&l)
		if errcode.Of(l.Validate()) != errcode.InvalidParams {
			t.Fatalf("%s: accepted", name)
		}
	}
}
