//go:build rp2040

// Package rp2 drives the RP2040 user bank. Outputs are plain machine pins;
// the clock output is a PIO square wave, since GPOUT pins are not routed on
// most boards.
package rp2

import (
	"context"
	"errors"
	"machine"

	"lampring/internal/core"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	pio "github.com/tinygo-org/pio/rp2-pio"
	"github.com/tinygo-org/pio/rp2-pio/piolib"
	"periph.io/x/conn/v3/gpio"
	"tinygo.org/x/drivers"
)

// Bank is the only port on the RP2040.
const Bank core.PortID = "bank0"

const bankWidth = 30

var (
	errUnknownBank  = errors.New("rp2: unknown bank")
	errBankActive   = errors.New("rp2: bank already active")
	errBankInactive = errors.New("rp2: bank not active")
	errOpenDrain    = errors.New("rp2: open-drain output not supported")
	errNoClock      = errors.New("rp2: clock output needs a frequency")
	errRange        = errors.New("rp2: pin out of range")
)

// Platform implements core.Platform on the RP2040.
type Platform struct {
	active bool
	clocks *clockSet
}

var _ core.Platform = (*Platform)(nil)

func New() *Platform { return &Platform{clocks: newClockSet(newPulsar)} }

// newPulsar claims a PIO0 state machine and loads the Pulsar program for
// pin index. The state machine stays claimed for the platform's life.
func newPulsar(index int) (pulser, error) {
	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		return nil, err
	}
	pl, err := piolib.NewPulsar(sm, machine.Pin(index))
	if err != nil {
		sm.Unclaim()
		return nil, err
	}
	return pl, nil
}

func (p *Platform) pin(ref core.PinRef) (machine.Pin, error) {
	if ref.Port != Bank {
		return 0, errUnknownBank
	}
	if !p.active {
		return 0, errBankInactive
	}
	if ref.Index < 0 || ref.Index >= bankWidth {
		return 0, errRange
	}
	return machine.Pin(ref.Index), nil
}

// ActivatePort only tracks state: IO_BANK0 is released from reset by the
// runtime before main.
func (p *Platform) ActivatePort(id core.PortID) error {
	if id != Bank {
		return errUnknownBank
	}
	if p.active {
		return errBankActive
	}
	p.active = true
	return nil
}

func (p *Platform) DeactivatePort(id core.PortID) error {
	if id != Bank {
		return errUnknownBank
	}
	if !p.active {
		return errBankInactive
	}
	p.active = false
	return nil
}

// ConfigureOutput ignores Pull and Speed; the RP2040 pad is push-pull only.
func (p *Platform) ConfigureOutput(ref core.PinRef, cfg core.OutputConfig) error {
	pin, err := p.pin(ref)
	if err != nil {
		return err
	}
	if cfg.Drive == core.OpenDrain {
		return errOpenDrain
	}
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Low()
	return nil
}

// ConfigureAltFunc runs a Pulsar square wave at the requested frequency on
// the pin. The first configure of a pin claims a PIO0 state machine and
// loads the program; later ones reuse it.
func (p *Platform) ConfigureAltFunc(ref core.PinRef, cfg core.AltFuncConfig) error {
	pin, err := p.pin(ref)
	if err != nil {
		return err
	}
	if cfg.Func.Freq <= 0 {
		return errNoClock
	}
	pin.Configure(machine.PinConfig{Mode: pio.PIO0.PinMode()})
	if err := p.clocks.start(ref.Index, cfg.Func.Freq.Period()); err != nil {
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
		return err
	}
	return nil
}

// Reset stops any clock on the pin and returns it to a floating input.
func (p *Platform) Reset(ref core.PinRef) error {
	pin, err := p.pin(ref)
	if err != nil {
		return err
	}
	p.clocks.stop(ref.Index)
	pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	return nil
}

func (p *Platform) Write(ref core.PinRef, l gpio.Level) error {
	pin, err := p.pin(ref)
	if err != nil {
		return err
	}
	pin.Set(bool(l))
	return nil
}

type console struct{ u *uartx.UART }

func (c console) Write(b []byte) (int, error) { return c.u.Write(b) }
func (c console) Read(b []byte) (int, error) {
	return c.u.RecvSomeContext(context.Background(), b)
}
func (console) Buffered() int { return 0 }

// Console configures UART0 on GP0/GP1 for the log sink.
func Console(baud uint32) drivers.UART {
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	return console{u: u}
}
