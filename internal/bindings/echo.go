package bindings

import (
	"context"
	"time"
	"unicode/utf8"
)

// EchoBytes round-trips a buffer through native code.
func (a *Adapter) EchoBytes(ctx context.Context, in []byte) ([]byte, error) {
	if err := a.marshal.bytes("echo_bytes", "data", in); err != nil {
		return nil, err
	}
	leave, err := a.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	out, st := a.shim.EchoBytes(in)
	if err := nativeError("echo_bytes", st); err != nil {
		return nil, err
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

// EchoString round-trips UTF-8 text through native code.
func (a *Adapter) EchoString(ctx context.Context, s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", &MarshalError{Op: "echo_bytes", Arg: "data", Reason: "not valid UTF-8"}
	}
	out, err := a.EchoBytes(ctx, []byte(s))
	if err != nil {
		return "", err
	}
	return a.marshal.utf8Result("echo_bytes", out)
}

func (a *Adapter) EchoInt64(ctx context.Context, v int64) (int64, error) {
	leave, err := a.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer leave()
	out, st := a.shim.EchoInt64(v)
	return out, nativeError("echo_i64", st)
}

func (a *Adapter) EchoFloat64(ctx context.Context, v float64) (float64, error) {
	leave, err := a.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer leave()
	out, st := a.shim.EchoFloat64(v)
	return out, nativeError("echo_f64", st)
}

// AddInt64 returns a+b, or ErrOverflow when the sum does not fit.
func (a *Adapter) AddInt64(ctx context.Context, x, y int64) (int64, error) {
	leave, err := a.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer leave()
	out, st := a.shim.AddInt64(x, y)
	if err := nativeError("add_i64", st); err != nil {
		return 0, err
	}
	return out, nil
}

// Touch holds the library's global state for d and returns the call
// sequence number. It fails with ErrReentered if the gate ever let two
// calls overlap.
func (a *Adapter) Touch(ctx context.Context, d time.Duration) (uint64, error) {
	if d < 0 || d.Milliseconds() > int64(^uint32(0)) {
		return 0, &MarshalError{Op: "touch", Arg: "millis", Reason: "duration out of range"}
	}
	leave, err := a.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer leave()
	seq, st := a.shim.Touch(uint32(d.Milliseconds()))
	if err := nativeError("touch", st); err != nil {
		return 0, err
	}
	return seq, nil
}
