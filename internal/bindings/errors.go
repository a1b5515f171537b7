package bindings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
	"github.com/hsiuhsiu/cfgcore-go/internal/cgo"
)

var (
	// ErrNotBuilt reports that the native library was not linked into the
	// current binary.
	ErrNotBuilt = cgo.ErrNotBuilt

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("bindings: adapter closed")

	// ErrNativeFailure matches every *NativeError.
	ErrNativeFailure = errors.New("bindings: native call failed")

	// ErrMarshaling matches every *MarshalError.
	ErrMarshaling = errors.New("bindings: value cannot cross the native boundary")

	// ErrOwnership matches every *OwnershipError.
	ErrOwnership = errors.New("bindings: handle ownership violation")

	// ErrABIMismatch matches every *ABIError.
	ErrABIMismatch = errors.New("bindings: native ABI mismatch")
)

// Per-code sentinels. A *NativeError matches the one for its code.
var (
	ErrUnknown         = errors.New("bindings: unknown native error")
	ErrInvalidArgument = errors.New("bindings: invalid argument")
	ErrNotFound        = errors.New("bindings: not found")
	ErrNoMemory        = errors.New("bindings: native allocation failed")
	ErrInvalidState    = errors.New("bindings: invalid state")
	ErrOverflow        = errors.New("bindings: arithmetic overflow")
	ErrReentered       = errors.New("bindings: native library reentered")
	ErrTooLarge        = errors.New("bindings: value too large")
)

var codeSentinels = map[abi.Code]error{
	abi.CodeUnknown:         ErrUnknown,
	abi.CodeInvalidArgument: ErrInvalidArgument,
	abi.CodeNotFound:        ErrNotFound,
	abi.CodeNoMemory:        ErrNoMemory,
	abi.CodeInvalidState:    ErrInvalidState,
	abi.CodeOverflow:        ErrOverflow,
	abi.CodeReentered:       ErrReentered,
	abi.CodeTooLarge:        ErrTooLarge,
}

// NativeError is a failure reported by the native library through the
// per-call status envelope.
type NativeError struct {
	Op      string
	Code    abi.Code
	Message string
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("bindings.%s: native %s (code %d): %s", e.Op, e.Code, int32(e.Code), e.Message)
}

func (e *NativeError) Is(target error) bool {
	if target == ErrNativeFailure {
		return true
	}
	s, ok := codeSentinels[e.Code]
	return ok && s == target
}

// MarshalError reports an argument or result that cannot be represented on
// the other side of the boundary.
type MarshalError struct {
	Op     string
	Arg    string
	Reason string
}

func (e *MarshalError) Error() string {
	return fmt.Sprintf("bindings.%s: cannot marshal %s: %s", e.Op, e.Arg, e.Reason)
}

func (e *MarshalError) Is(target error) bool { return target == ErrMarshaling }

// OwnershipError reports use of a handle the caller does not own.
type OwnershipError struct {
	Op     string
	Handle Handle
	Reason string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("bindings.%s: %s: %s", e.Op, e.Handle, e.Reason)
}

func (e *OwnershipError) Is(target error) bool { return target == ErrOwnership }

// ABIError lists every difference between the loaded native library and the
// interface description the adapter was built against.
type ABIError struct {
	Library    string
	Mismatches []abi.Mismatch
}

func (e *ABIError) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = m.String()
	}
	return fmt.Sprintf("bindings: %s ABI mismatch: %s", e.Library, strings.Join(parts, "; "))
}

func (e *ABIError) Is(target error) bool { return target == ErrABIMismatch }

// Code extracts the native status code carried by err.
func Code(err error) (abi.Code, bool) {
	var ne *NativeError
	if errors.As(err, &ne) {
		return ne.Code, true
	}
	return abi.CodeOK, false
}

func nativeError(op string, st abi.Status) error {
	if st.OK() {
		return nil
	}
	msg := st.Message
	if msg == "" {
		msg = "no detail reported"
	}
	return &NativeError{Op: op, Code: st.Code, Message: msg}
}
