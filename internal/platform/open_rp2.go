//go:build rp2040

package platform

import (
	"io"

	"lampring/internal/boards"
	"lampring/internal/core"
	"lampring/internal/logx"
	"lampring/internal/platform/rp2"
)

const Name = "rp2"

const consoleBaud = 115200

// Open returns the RP2040 backend with UART0 as the console.
func Open(boards.Layout) (core.Platform, io.Writer, error) {
	logx.LogDebug(logx.ComponentPlatform, "opened", "backend", Name)
	return rp2.New(), logx.UARTWriter{U: rp2.Console(consoleBaud)}, nil
}
