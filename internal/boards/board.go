// Package boards describes how the lamp ring and clock output are wired on
// each supported board. Layouts carry wiring only; which one is compiled in
// is chosen by build tag (see selected_*.go).
package boards

import (
	"strconv"

	"lampring/errcode"
	"lampring/internal/core"
	"lampring/internal/lamps"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Layout is the full wiring of one board.
type Layout struct {
	Name string

	// Clock output (claimed first, released last).
	ClockPort  core.PortID
	ClockWidth int
	ClockIndex int
	Clock      core.AltFunc

	// Lamp bank.
	LampPort  core.PortID
	LampWidth int
	Lamps     []lamps.Wiring
	LampOut   core.OutputConfig
}

// SharedPort reports whether clock and lamps live on the same bank.
func (l Layout) SharedPort() bool { return l.ClockPort == l.LampPort }

// Validate checks slot indexes against the bank widths. Role bijection is
// checked by lamps.Wire.
func (l Layout) Validate() error {
	const op = "boards.validate"
	bad := func(msg string) error { return errcode.New(errcode.InvalidParams, op, l.Name+": "+msg) }

	if l.ClockWidth <= 0 || l.LampWidth <= 0 {
		return bad("bank widths must be positive")
	}
	if l.SharedPort() && l.ClockWidth != l.LampWidth {
		return bad("shared bank declared with two widths")
	}
	if l.ClockIndex < 0 || l.ClockIndex >= l.ClockWidth {
		return bad("clock slot " + strconv.Itoa(l.ClockIndex) + " out of range")
	}
	if l.Clock.Name == "" {
		return bad("clock function unnamed")
	}
	used := make(map[int]bool, len(l.Lamps)+1)
	if l.SharedPort() {
		used[l.ClockIndex] = true
	}
	for _, w := range l.Lamps {
		if w.Index < 0 || w.Index >= l.LampWidth {
			return bad("lamp slot " + strconv.Itoa(w.Index) + " out of range")
		}
		if used[w.Index] {
			return bad("slot " + strconv.Itoa(w.Index) + " wired twice")
		}
		used[w.Index] = true
	}
	return nil
}

var lampOut = core.OutputConfig{Pull: gpio.Float, Drive: core.PushPull, Speed: core.SpeedLow}

// F3Discovery is the STM32F3 Discovery: MCO on PA8, the compass rose of
// user LEDs LD3..LD10 on PE8..PE15.
var F3Discovery = Layout{
	Name:       "f3disco",
	ClockPort:  "A",
	ClockWidth: 16,
	ClockIndex: 8,
	Clock:      core.AltFunc{Name: "MCO", Freq: 8 * physic.MegaHertz},
	LampPort:   "E",
	LampWidth:  16,
	Lamps: []lamps.Wiring{
		{Index: 8, Role: lamps.LD4},
		{Index: 9, Role: lamps.LD3},
		{Index: 10, Role: lamps.LD5},
		{Index: 11, Role: lamps.LD7},
		{Index: 12, Role: lamps.LD9},
		{Index: 13, Role: lamps.LD10},
		{Index: 14, Role: lamps.LD8},
		{Index: 15, Role: lamps.LD6},
	},
	LampOut: lampOut,
}

// Pico is a Raspberry Pi Pico with eight LEDs on GP2..GP9 and the clock
// square wave on GP21. RP2040 has a single user bank.
var Pico = Layout{
	Name:       "pico",
	ClockPort:  "bank0",
	ClockWidth: 30,
	ClockIndex: 21,
	Clock:      core.AltFunc{Name: "PIO_CLK", Freq: 1 * physic.MegaHertz},
	LampPort:   "bank0",
	LampWidth:  30,
	Lamps: []lamps.Wiring{
		{Index: 2, Role: lamps.LD4},
		{Index: 3, Role: lamps.LD3},
		{Index: 4, Role: lamps.LD5},
		{Index: 5, Role: lamps.LD7},
		{Index: 6, Role: lamps.LD9},
		{Index: 7, Role: lamps.LD10},
		{Index: 8, Role: lamps.LD8},
		{Index: 9, Role: lamps.LD6},
	},
	LampOut: lampOut,
}

// RaspberryPi drives LEDs through the GPIO character device and routes
// GPCLK0 to GPIO4.
var RaspberryPi = Layout{
	Name:       "rpi",
	ClockPort:  "gpiochip0",
	ClockWidth: 28,
	ClockIndex: 4,
	Clock:      core.AltFunc{Name: "GPCLK0", Freq: 1 * physic.MegaHertz},
	LampPort:   "gpiochip0",
	LampWidth:  28,
	Lamps: []lamps.Wiring{
		{Index: 5, Role: lamps.LD4},
		{Index: 6, Role: lamps.LD3},
		{Index: 13, Role: lamps.LD5},
		{Index: 19, Role: lamps.LD7},
		{Index: 26, Role: lamps.LD9},
		{Index: 16, Role: lamps.LD10},
		{Index: 20, Role: lamps.LD8},
		{Index: 21, Role: lamps.LD6},
	},
	LampOut: lampOut,
}
