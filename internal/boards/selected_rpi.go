//go:build board_rpi && !board_pico

package boards

var Selected = RaspberryPi
