// Package config holds the run parameters of the lamp program.
package config

import (
	"log/slog"
	"strconv"
	"time"

	"lampring/errcode"
	"lampring/internal/lamps"
)

type Config struct {
	// TickBound is the number of advances before shutdown.
	TickBound int
	// SpinIterations paces ticks on targets without a usable clock.
	SpinIterations int
	// TickPeriod, when non-zero, paces ticks with a clock sleep instead.
	TickPeriod time.Duration
	StartRole  lamps.Role
	LogLevel   slog.Level
}

func Default() Config {
	return Config{
		TickBound:      9,
		SpinIterations: 1000,
		StartRole:      lamps.LD3,
		LogLevel:       slog.LevelInfo,
	}
}

func (c Config) Validate() error {
	const op = "config.validate"
	switch {
	case c.TickBound < 0:
		return errcode.New(errcode.InvalidParams, op, "tick bound "+strconv.Itoa(c.TickBound)+" is negative")
	case c.SpinIterations < 0:
		return errcode.New(errcode.InvalidParams, op, "spin iterations must not be negative")
	case c.TickPeriod < 0:
		return errcode.New(errcode.InvalidParams, op, "tick period must not be negative")
	case !c.StartRole.Valid():
		return errcode.New(errcode.InvalidParams, op, "start role "+c.StartRole.String()+" is not a lamp")
	}
	return nil
}
