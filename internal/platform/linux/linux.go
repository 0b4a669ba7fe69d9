//go:build linux && periph

// Package linux drives a Linux SBC. Ports are gpiochips; lamp outputs are
// character-device line requests and the clock output is a periph pin
// driven through its PWM/GPCLK function.
package linux

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"lampring/internal/core"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const consumer = "lampring"

var errNoClock = errors.New("linux: clock output needs a frequency")

// Platform implements core.Platform. Safe for concurrent use, though the
// program only calls it from one goroutine.
type Platform struct {
	mu     sync.Mutex
	chips  map[core.PortID]*gpiocdev.Chip
	lines  map[core.PinRef]*gpiocdev.Line
	clocks map[core.PinRef]gpio.PinIO

	hostOnce sync.Once
	hostErr  error
}

var _ core.Platform = (*Platform)(nil)

func New() *Platform {
	return &Platform{
		chips:  make(map[core.PortID]*gpiocdev.Chip),
		lines:  make(map[core.PinRef]*gpiocdev.Line),
		clocks: make(map[core.PinRef]gpio.PinIO),
	}
}

// ActivatePort opens the gpiochip named id.
func (p *Platform) ActivatePort(id core.PortID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.chips[id]; ok {
		return fmt.Errorf("linux: %s already open", id)
	}
	c, err := gpiocdev.NewChip(string(id), gpiocdev.WithConsumer(consumer))
	if err != nil {
		return err
	}
	p.chips[id] = c
	return nil
}

func (p *Platform) DeactivatePort(id core.PortID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.chips[id]
	if !ok {
		return fmt.Errorf("linux: %s not open", id)
	}
	for ref := range p.lines {
		if ref.Port == id {
			return fmt.Errorf("linux: %s still requested", ref)
		}
	}
	delete(p.chips, id)
	return c.Close()
}

// caller holds lock
func (p *Platform) chip(ref core.PinRef) (*gpiocdev.Chip, error) {
	c, ok := p.chips[ref.Port]
	if !ok {
		return nil, fmt.Errorf("linux: %s not open", ref.Port)
	}
	if ref.Index < 0 || ref.Index >= c.Lines() {
		return nil, fmt.Errorf("linux: %s has no line %d", ref.Port, ref.Index)
	}
	return c, nil
}

func bias(pull gpio.Pull) gpiocdev.LineReqOption {
	switch pull {
	case gpio.PullUp:
		return gpiocdev.WithPullUp
	case gpio.PullDown:
		return gpiocdev.WithPullDown
	default:
		return gpiocdev.WithBiasDisabled
	}
}

// ConfigureOutput requests the line as an output driven low. Speed has no
// character-device equivalent and is ignored.
func (p *Platform) ConfigureOutput(ref core.PinRef, cfg core.OutputConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, err := p.chip(ref)
	if err != nil {
		return err
	}
	if _, ok := p.lines[ref]; ok {
		return fmt.Errorf("linux: %s already requested", ref)
	}
	drive := gpiocdev.LineReqOption(gpiocdev.AsPushPull)
	if cfg.Drive == core.OpenDrain {
		drive = gpiocdev.AsOpenDrain
	}
	l, err := c.RequestLine(ref.Index, gpiocdev.AsOutput(0), drive, bias(cfg.Pull))
	if err != nil {
		return err
	}
	p.lines[ref] = l
	return nil
}

// ConfigureAltFunc drives a 50% duty clock on the periph pin GPIO<index>.
// On a Raspberry Pi this selects the GPCLK function for GPIO4.
func (p *Platform) ConfigureAltFunc(ref core.PinRef, cfg core.AltFuncConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.chip(ref); err != nil {
		return err
	}
	if cfg.Func.Freq <= 0 {
		return errNoClock
	}
	p.hostOnce.Do(func() { _, p.hostErr = host.Init() })
	if p.hostErr != nil {
		return p.hostErr
	}
	pin := gpioreg.ByName("GPIO" + strconv.Itoa(ref.Index))
	if pin == nil {
		return fmt.Errorf("linux: no periph pin for %s", ref)
	}
	if err := pin.PWM(gpio.DutyHalf, cfg.Func.Freq); err != nil {
		return err
	}
	p.clocks[ref] = pin
	return nil
}

// Reset stops a clock or returns a line to input and frees it.
func (p *Platform) Reset(ref core.PinRef) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pin, ok := p.clocks[ref]; ok {
		delete(p.clocks, ref)
		if err := pin.Halt(); err != nil {
			return err
		}
		return pin.In(gpio.Float, gpio.NoEdge)
	}
	l, ok := p.lines[ref]
	if !ok {
		return fmt.Errorf("linux: %s not configured", ref)
	}
	delete(p.lines, ref)
	if err := l.Reconfigure(gpiocdev.AsInput); err != nil {
		l.Close()
		return err
	}
	return l.Close()
}

func (p *Platform) Write(ref core.PinRef, lv gpio.Level) error {
	p.mu.Lock()
	l, ok := p.lines[ref]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("linux: %s not an output", ref)
	}
	v := 0
	if lv {
		v = 1
	}
	return l.SetValue(v)
}
