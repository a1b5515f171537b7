package abi

import "fmt"

// Code is a status code returned by the native core. The values are part of
// the ABI and never change meaning between releases.
type Code int32

const (
	CodeOK              Code = 0
	CodeUnknown         Code = 1
	CodeInvalidArgument Code = 2
	CodeNotFound        Code = 3
	CodeNoMemory        Code = 4
	CodeInvalidState    Code = 5
	CodeOverflow        Code = 6
	CodeReentered       Code = 7
	CodeTooLarge        Code = 8
)

var codeNames = map[Code]string{
	CodeOK:              "ok",
	CodeUnknown:         "unknown",
	CodeInvalidArgument: "invalid_argument",
	CodeNotFound:        "not_found",
	CodeNoMemory:        "no_memory",
	CodeInvalidState:    "invalid_state",
	CodeOverflow:        "overflow",
	CodeReentered:       "reentered",
	CodeTooLarge:        "too_large",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int32(c))
}

// ParseCode maps an error-kind name from the interface description back to
// its code.
func ParseCode(name string) (Code, bool) {
	for c, n := range codeNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}

// Status is the error envelope filled in by the shim for a single call.
// A zero Status means success.
type Status struct {
	Code    Code
	Message string
}

// OK reports whether the call succeeded.
func (s Status) OK() bool { return s.Code == CodeOK }

// Ptr is an opaque native pointer value. It is only meaningful to the shim
// that produced it and is never dereferenced on the Go side.
type Ptr uintptr

// Null is the zero pointer; shims never return it on success.
const Null Ptr = 0
