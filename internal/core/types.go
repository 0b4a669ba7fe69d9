// Package core holds the vocabulary shared between the pin ownership layer
// and the platform backends that actually touch hardware.
package core

import (
	"strconv"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// ---- Ports and pins ----

// PortID names one I/O bank, e.g. "A" or "E" on STM32, "gpiochip0" on Linux.
type PortID string

// PinRef addresses one slot of one port.
type PinRef struct {
	Port  PortID
	Index int
}

// String renders STM32-style names ("PE9") for single-letter banks and
// "chip:offset" otherwise.
func (r PinRef) String() string {
	if len(r.Port) == 1 {
		return "P" + string(r.Port) + strconv.Itoa(r.Index)
	}
	return string(r.Port) + ":" + strconv.Itoa(r.Index)
}

// ---- Electrical options ----

// Pull reuses periph's vocabulary: gpio.Float, gpio.PullUp, gpio.PullDown.
type Pull = gpio.Pull

// Level is the digital level written to an output.
type Level = gpio.Level

type DriveType uint8

const (
	PushPull DriveType = iota
	OpenDrain
)

func (d DriveType) String() string {
	if d == OpenDrain {
		return "open_drain"
	}
	return "push_pull"
}

type Speed uint8

const (
	SpeedLow Speed = iota
	SpeedMedium
	SpeedHigh
	SpeedVeryHigh
)

func (s Speed) String() string {
	switch s {
	case SpeedMedium:
		return "medium"
	case SpeedHigh:
		return "high"
	case SpeedVeryHigh:
		return "very_high"
	default:
		return "low"
	}
}

type OutputConfig struct {
	Pull  Pull
	Drive DriveType
	Speed Speed
}

// AltFunc is an internal peripheral signal a pin can be routed to.
// Freq is advisory: backends that synthesise the signal use it, backends
// that mux a hardware clock ignore it.
type AltFunc struct {
	Name string
	Freq physic.Frequency
}

type AltFuncConfig struct {
	Pull Pull
	Func AltFunc
}

// ---- Platform contract ----

// Platform is the thin hardware layer this firmware consumes. Implementations
// do not track ownership; the port package does.
type Platform interface {
	ActivatePort(id PortID) error
	DeactivatePort(id PortID) error

	ConfigureOutput(p PinRef, cfg OutputConfig) error
	ConfigureAltFunc(p PinRef, cfg AltFuncConfig) error
	// Reset returns a pin to its unconfigured state (floating input).
	Reset(p PinRef) error

	Write(p PinRef, l Level) error
}
