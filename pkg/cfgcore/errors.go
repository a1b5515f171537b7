package cfgcore

import (
	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
	"github.com/hsiuhsiu/cfgcore-go/internal/bindings"
)

// Error types. Use errors.As to inspect them.
type (
	// NativeError is a failure reported by the native library.
	NativeError = bindings.NativeError
	// MarshalError is an argument or result that cannot cross the boundary.
	MarshalError = bindings.MarshalError
	// OwnershipError is use of a handle the caller no longer owns.
	OwnershipError = bindings.OwnershipError
	// ABIError lists every difference found when verifying the native ABI.
	ABIError = bindings.ABIError
)

// Error categories. Use errors.Is to test for them.
var (
	ErrNotBuilt      = bindings.ErrNotBuilt
	ErrLibraryClosed = bindings.ErrClosed
	ErrNativeFailure = bindings.ErrNativeFailure
	ErrMarshaling    = bindings.ErrMarshaling
	ErrOwnership     = bindings.ErrOwnership
	ErrABIMismatch   = bindings.ErrABIMismatch
)

// Native error kinds. A NativeError matches the one for its code.
var (
	ErrUnknown         = bindings.ErrUnknown
	ErrInvalidArgument = bindings.ErrInvalidArgument
	ErrNotFound        = bindings.ErrNotFound
	ErrNoMemory        = bindings.ErrNoMemory
	ErrInvalidState    = bindings.ErrInvalidState
	ErrOverflow        = bindings.ErrOverflow
	ErrReentered       = bindings.ErrReentered
	ErrTooLarge        = bindings.ErrTooLarge
)

// Code is a stable native status code.
type Code = abi.Code

const (
	CodeOK              = abi.CodeOK
	CodeUnknown         = abi.CodeUnknown
	CodeInvalidArgument = abi.CodeInvalidArgument
	CodeNotFound        = abi.CodeNotFound
	CodeNoMemory        = abi.CodeNoMemory
	CodeInvalidState    = abi.CodeInvalidState
	CodeOverflow        = abi.CodeOverflow
	CodeReentered       = abi.CodeReentered
	CodeTooLarge        = abi.CodeTooLarge
)

// ErrorCode returns the native status code carried by err, if any.
func ErrorCode(err error) (Code, bool) {
	return bindings.Code(err)
}
