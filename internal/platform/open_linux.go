//go:build linux && periph && !rp2040

package platform

import (
	"io"
	"os"

	"lampring/internal/boards"
	"lampring/internal/core"
	"lampring/internal/logx"
	"lampring/internal/platform/linux"
)

const Name = "linux"

// Open returns the gpiochip backend. Banks are probed on activation.
func Open(boards.Layout) (core.Platform, io.Writer, error) {
	logx.LogDebug(logx.ComponentPlatform, "opened", "backend", Name)
	return linux.New(), os.Stderr, nil
}
