//go:build !rp2040 && !(linux && periph)

package platform

import (
	"os"
	"testing"

	"lampring/internal/boards"
	"lampring/internal/core"
	"lampring/internal/platform/sim"
)

func TestOpenSizesSimBanks(t *testing.T) {
	plat, w, err := Open(boards.Pico)
	if err != nil {
		t.Fatal(err)
	}
	if w != os.Stderr {
		t.Fatal("sim should log to stderr")
	}
	s, ok := plat.(*sim.Platform)
	if !ok {
		t.Fatalf("backend = %T", plat)
	}
	if err := s.ActivatePort("bank0"); err != nil {
		t.Fatal(err)
	}
	if s.Pin(core.PinRef{Port: "bank0", Index: 29}) == nil {
		t.Fatal("bank narrower than the Pico layout")
	}
	if Name != "sim" {
		t.Fatalf("Name = %q", Name)
	}
}
