package bindings

import (
	"context"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
)

// DigestResult is the completion of one DigestAsync call.
type DigestResult struct {
	Digest uint64
	Err    error
}

// DigestAsync starts an FNV-1a 64 digest of data on a native worker thread.
// data is copied before DigestAsync returns. The returned channel receives
// exactly one result; the native thread never blocks delivering it.
func (a *Adapter) DigestAsync(ctx context.Context, data []byte) (<-chan DigestResult, error) {
	if err := a.marshal.bytes("digest_async", "data", data); err != nil {
		return nil, err
	}
	leave, err := a.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	ch := make(chan DigestResult, 1)
	st := a.shim.DigestAsync(data, func(digest uint64, st abi.Status) {
		select {
		case ch <- DigestResult{Digest: digest, Err: nativeError("digest_async", st)}:
		default:
		}
	})
	if err := nativeError("digest_async", st); err != nil {
		return nil, err
	}
	return ch, nil
}

// Digest is DigestAsync waiting for the result or ctx.
func (a *Adapter) Digest(ctx context.Context, data []byte) (uint64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ch, err := a.DigestAsync(ctx, data)
	if err != nil {
		return 0, err
	}
	select {
	case r := <-ch:
		return r.Digest, r.Err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
