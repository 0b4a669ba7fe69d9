package errcode

import "errors"

// Code is a stable error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Pin ownership
	AlreadyClaimed Code = "already_claimed"
	NotOwnedHere   Code = "not_owned_here"
	UnknownPin     Code = "unknown_pin"

	// Pin configuration
	AlreadyConfigured Code = "already_configured"
	NotConfigured     Code = "not_configured"

	// Port lifecycle
	PortBusy     Code = "port_busy"
	PortInactive Code = "port_inactive"

	// Program lifecycle
	Terminated    Code = "terminated"
	InvalidParams Code = "invalid_params"

	// Platform faults
	HardwarePassthrough Code = "hardware_passthrough"

	Error Code = "error" // generic fallback
)

// E keeps the failing operation and an optional cause next to a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.PortBusy) match a wrapped *E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// New builds an *E for op.
func New(c Code, op, msg string) *E { return &E{C: c, Op: op, Msg: msg} }

// Wrap builds an *E for op around cause.
func Wrap(c Code, op string, cause error) *E { return &E{C: c, Op: op, Err: cause} }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Error
}

// MapDriverErr maps low-level platform errors to a Code. Codes already
// produced by this module pass through; anything else is a hardware fault.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	if c := Of(err); c != Error {
		return c
	}
	return HardwarePassthrough
}
