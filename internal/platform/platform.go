// Package platform picks the core.Platform backend for the build target
// and the writer the firmware logs to.
package platform

import (
	"lampring/internal/boards"
)

// bankWidth is the widest bank a layout uses.
func bankWidth(l boards.Layout) int {
	if l.ClockWidth > l.LampWidth {
		return l.ClockWidth
	}
	return l.LampWidth
}
