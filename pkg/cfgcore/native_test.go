//go:build cgo && !windows

package cfgcore_test

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hsiuhsiu/cfgcore-go/pkg/cfgcore"
)

func openNative(t *testing.T) *cfgcore.Library {
	t.Helper()
	lib, err := cfgcore.Open(cfgcore.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func TestNativeScenario(t *testing.T) {
	lib := openNative(t)
	ctx := context.Background()

	st, err := lib.OpenStore(ctx, "config-a")
	require.NoError(t, err)
	v, err := cfgcore.ReadValue(ctx, st, "key1")
	require.NoError(t, err)
	assert.Equal(t, "value1", v)
	require.NoError(t, cfgcore.Release(st))

	_, err = cfgcore.ReadValue(ctx, st, "key1")
	assert.True(t, errors.Is(err, cfgcore.ErrOwnership))
	assert.True(t, errors.Is(cfgcore.Release(st), cfgcore.ErrOwnership))
}

func TestNativeVersionAndMismatch(t *testing.T) {
	lib := openNative(t)
	assert.Equal(t, cfgcore.InterfaceVersion(), lib.ABIVersion())
	assert.NotEmpty(t, lib.NativeVersion())

	_, err := cfgcore.Open(cfgcore.Config{ExpectedABIVersion: "0.9"})
	assert.True(t, errors.Is(err, cfgcore.ErrABIMismatch))
}

func TestNativeErrorsAndEcho(t *testing.T) {
	lib := openNative(t)
	ctx := context.Background()

	_, err := lib.OpenStore(ctx, "config-z")
	assert.True(t, errors.Is(err, cfgcore.ErrNotFound))
	var ne *cfgcore.NativeError
	require.ErrorAs(t, err, &ne)
	assert.NotEmpty(t, ne.Message)

	_, err = lib.Add(ctx, math.MinInt64, -1)
	assert.True(t, errors.Is(err, cfgcore.ErrOverflow))

	out, err := lib.Echo(ctx, []byte{0, 1, 2, 0xff})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 0xff}, out)

	s, err := lib.EchoString(ctx, "héllo")
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)

	f, err := lib.EchoFloat64(ctx, math.E)
	require.NoError(t, err)
	assert.Equal(t, math.E, f)
}

func TestNativeMergeAndSnapshot(t *testing.T) {
	lib := openNative(t)
	ctx := context.Background()

	dst, err := lib.OpenStore(ctx, "config-a")
	require.NoError(t, err)
	defer dst.Release()
	snap, err := dst.Snapshot(ctx)
	require.NoError(t, err)

	src, err := lib.OpenStore(ctx, "config-b")
	require.NoError(t, err)
	require.NoError(t, dst.Merge(ctx, src))

	v, err := dst.ReadValue(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, "other1", v)
	v, err = snap.ReadValue(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, "value1", v)

	assert.True(t, errors.Is(src.Release(), cfgcore.ErrOwnership))
	require.NoError(t, snap.Release())
}

func TestNativeDigest(t *testing.T) {
	lib := openNative(t)
	data := []byte("native digest")
	h := fnv.New64a()
	_, _ = h.Write(data)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := lib.Digest(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, h.Sum64(), got)
}

func TestNativeTouchNeverReenters(t *testing.T) {
	lib := openNative(t)
	ctx := context.Background()

	first, err := lib.Touch(ctx, 0)
	require.NoError(t, err)

	const workers, rounds = 6, 5
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for r := 0; r < rounds; r++ {
				if _, err := lib.Touch(ctx, time.Millisecond); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	last, err := lib.Touch(ctx, 0)
	require.NoError(t, err)
	assert.EqualValues(t, first+workers*rounds+1, last)
}
