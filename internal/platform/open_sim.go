//go:build !rp2040 && !(linux && periph)

package platform

import (
	"io"
	"os"

	"lampring/internal/boards"
	"lampring/internal/core"
	"lampring/internal/logx"
	"lampring/internal/platform/sim"
)

// Name identifies the compiled-in backend.
const Name = "sim"

// Open returns an in-memory bank sized for l, logging to stderr.
func Open(l boards.Layout) (core.Platform, io.Writer, error) {
	logx.LogDebug(logx.ComponentPlatform, "opened", "backend", Name)
	return sim.New(bankWidth(l)), os.Stderr, nil
}
