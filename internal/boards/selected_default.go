//go:build !(board_pico || board_rpi)

package boards

// Selected is the layout compiled into this build.
var Selected = F3Discovery
