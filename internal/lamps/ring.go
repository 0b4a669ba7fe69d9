// Package lamps runs the indicator ring: eight output pins, one lit at a
// time, stepping through a fixed hand-wired order.
package lamps

import "strconv"

// Role is the logical identity of one lamp, named after its board label.
type Role uint8

const (
	LD3 Role = iota + 3
	LD4
	LD5
	LD6
	LD7
	LD8
	LD9
	LD10
)

// Roles lists every role in label order.
var Roles = [...]Role{LD3, LD4, LD5, LD6, LD7, LD8, LD9, LD10}

// next is the ring order. It follows the physical compass layout of the
// lamps, not label order, so it is a literal table.
var next = [...]Role{
	LD3:  LD5,
	LD5:  LD7,
	LD7:  LD9,
	LD9:  LD10,
	LD10: LD8,
	LD8:  LD6,
	LD6:  LD4,
	LD4:  LD3,
}

func (r Role) Valid() bool { return r >= LD3 && r <= LD10 }

// Next returns the role lit after r. Invalid roles map to themselves.
func (r Role) Next() Role {
	if !r.Valid() {
		return r
	}
	return next[r]
}

func (r Role) String() string { return "LD" + strconv.Itoa(int(r)) }

// Ring returns one full period of the ring starting at start.
func Ring(start Role) []Role {
	if !start.Valid() {
		return nil
	}
	out := make([]Role, 0, len(Roles))
	for r := start; ; {
		out = append(out, r)
		r = r.Next()
		if r == start {
			return out
		}
	}
}
