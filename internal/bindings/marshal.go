package bindings

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
)

// marshaler validates values against the description's limits before they
// are handed to the shim.
type marshaler struct {
	limits abi.Limits
}

// text checks a string argument: non-empty, valid UTF-8, no NUL bytes and
// at most MaxKeyLen bytes.
func (m marshaler) text(op, arg, s string) error {
	switch {
	case s == "":
		return &MarshalError{Op: op, Arg: arg, Reason: "must not be empty"}
	case len(s) > m.limits.MaxKeyLen:
		return &MarshalError{Op: op, Arg: arg, Reason: fmt.Sprintf("length %d exceeds %d bytes", len(s), m.limits.MaxKeyLen)}
	case !utf8.ValidString(s):
		return &MarshalError{Op: op, Arg: arg, Reason: "not valid UTF-8"}
	case strings.IndexByte(s, 0) >= 0:
		return &MarshalError{Op: op, Arg: arg, Reason: "contains a NUL byte"}
	}
	return nil
}

func (m marshaler) bytes(op, arg string, b []byte) error {
	if len(b) > m.limits.MaxValueLen {
		return &MarshalError{Op: op, Arg: arg, Reason: fmt.Sprintf("length %d exceeds %d bytes", len(b), m.limits.MaxValueLen)}
	}
	return nil
}

// utf8Result converts a returned buffer to a string.
func (m marshaler) utf8Result(op string, b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", &MarshalError{Op: op, Arg: "result", Reason: "not valid UTF-8"}
	}
	return string(b), nil
}
