// Package mco routes one pin to the microcontroller clock output.
package mco

import (
	"lampring/errcode"
	"lampring/internal/core"
	"lampring/internal/logx"
	"lampring/internal/port"

	"periph.io/x/conn/v3/gpio"
)

// Controller holds the clock-output pin. The signal is produced by the
// clock multiplexer; software never writes it.
type Controller struct {
	pin *port.AltFuncPin
}

// New claims slot index on p and routes it to fn with a floating pull.
func New(p *port.Port, index int, fn core.AltFunc) (*Controller, error) {
	h, err := p.Claim(index)
	if err != nil {
		return nil, err
	}
	pin, err := port.ConfigureAsAltFunc(h, gpio.Float, fn)
	if err != nil {
		return nil, err
	}
	logx.LogInfo(logx.ComponentMCO, "clock output routed", "pin", pin.Ref().String(), "func", fn.Name, "freq", fn.Freq.String())
	return &Controller{pin: pin}, nil
}

func (c *Controller) Pin() *port.AltFuncPin { return c.pin }

// Return tears the pin down and releases it to p.
func (c *Controller) Return(p *port.Port) error {
	if c.pin == nil {
		return errcode.New(errcode.NotConfigured, "mco.return", "clock output already returned")
	}
	h, err := c.pin.Teardown()
	if err != nil {
		return err
	}
	if err := p.Release(h); err != nil {
		return err
	}
	logx.LogInfo(logx.ComponentMCO, "clock output returned", "pin", h.String())
	c.pin = nil
	return nil
}
