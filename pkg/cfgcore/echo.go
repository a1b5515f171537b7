package cfgcore

import (
	"context"
	"time"

	"github.com/hsiuhsiu/cfgcore-go/internal/bindings"
)

// DigestResult is the outcome of one DigestAsync call.
type DigestResult = bindings.DigestResult

// Echo returns a copy of data made by native code.
func (l *Library) Echo(ctx context.Context, data []byte) ([]byte, error) {
	return l.adapter.EchoBytes(ctx, data)
}

// EchoString returns a copy of s made by native code.
func (l *Library) EchoString(ctx context.Context, s string) (string, error) {
	return l.adapter.EchoString(ctx, s)
}

// EchoInt64 passes v through native code unchanged.
func (l *Library) EchoInt64(ctx context.Context, v int64) (int64, error) {
	return l.adapter.EchoInt64(ctx, v)
}

// EchoFloat64 passes v through native code unchanged.
func (l *Library) EchoFloat64(ctx context.Context, v float64) (float64, error) {
	return l.adapter.EchoFloat64(ctx, v)
}

// Add returns x+y computed natively. An overflowing sum fails with
// ErrOverflow.
func (l *Library) Add(ctx context.Context, x, y int64) (int64, error) {
	return l.adapter.AddInt64(ctx, x, y)
}

// Touch occupies the native library for d and returns its call sequence
// number. It is used to observe that calls are serialized.
func (l *Library) Touch(ctx context.Context, d time.Duration) (uint64, error) {
	return l.adapter.Touch(ctx, d)
}

// Digest returns the FNV-1a 64 digest of data, computed on a native worker
// thread. It returns ctx.Err() if ctx ends first; the native work still
// completes and its result is dropped.
func (l *Library) Digest(ctx context.Context, data []byte) (uint64, error) {
	return l.adapter.Digest(ctx, data)
}

// DigestAsync starts a digest and returns a channel that receives exactly one
// result.
func (l *Library) DigestAsync(ctx context.Context, data []byte) (<-chan DigestResult, error) {
	return l.adapter.DigestAsync(ctx, data)
}
