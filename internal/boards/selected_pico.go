//go:build board_pico

package boards

var Selected = Pico
