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

	"github.com/hsiuhsiu/cfgcore-go/internal/abi/abitest"
	"github.com/hsiuhsiu/cfgcore-go/pkg/cfgcore"
)

func TestEchoRoundTrip(t *testing.T) {
	lib := openLib(t, abitest.New(), cfgcore.Config{})
	ctx := context.Background()

	t.Run("bytes", func(t *testing.T) {
		for _, in := range [][]byte{{}, {0}, []byte("hello"), {0xff, 0xfe, 0x00, 0x01}} {
			out, err := lib.Echo(ctx, in)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		}
	})
	t.Run("string", func(t *testing.T) {
		for _, in := range []string{"", "ascii", "naïve ☃", "日本語"} {
			out, err := lib.EchoString(ctx, in)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		}
	})
	t.Run("int64", func(t *testing.T) {
		for _, in := range []int64{0, -1, math.MaxInt64, math.MinInt64} {
			out, err := lib.EchoInt64(ctx, in)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		}
	})
	t.Run("float64", func(t *testing.T) {
		for _, in := range []float64{0, -0.5, math.Pi, math.MaxFloat64, math.Inf(-1)} {
			out, err := lib.EchoFloat64(ctx, in)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		}
		out, err := lib.EchoFloat64(ctx, math.NaN())
		require.NoError(t, err)
		assert.True(t, math.IsNaN(out))
	})
}

func TestEchoRejectsInvalidUTF8(t *testing.T) {
	lib := openLib(t, abitest.New(), cfgcore.Config{})
	_, err := lib.EchoString(context.Background(), "\xff")
	assert.True(t, errors.Is(err, cfgcore.ErrMarshaling))
}

func TestAdd(t *testing.T) {
	lib := openLib(t, abitest.New(), cfgcore.Config{})
	ctx := context.Background()

	sum, err := lib.Add(ctx, 40, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 42, sum)

	_, err = lib.Add(ctx, math.MaxInt64, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cfgcore.ErrOverflow))
	assert.True(t, errors.Is(err, cfgcore.ErrNativeFailure))

	var ne *cfgcore.NativeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, cfgcore.CodeOverflow, ne.Code)
	assert.NotEmpty(t, ne.Message)
}

func TestTouchSequence(t *testing.T) {
	lib := openLib(t, abitest.New(), cfgcore.Config{})
	ctx := context.Background()
	for want := uint64(1); want <= 3; want++ {
		seq, err := lib.Touch(ctx, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, want, seq)
	}
	_, err := lib.Touch(ctx, -time.Second)
	assert.True(t, errors.Is(err, cfgcore.ErrMarshaling))
}

func TestDigest(t *testing.T) {
	lib := openLib(t, abitest.New(), cfgcore.Config{})
	ctx := context.Background()
	data := []byte("the quick brown fox")

	h := fnv.New64a()
	_, _ = h.Write(data)
	want := h.Sum64()

	got, err := lib.Digest(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ch, err := lib.DigestAsync(ctx, data)
	require.NoError(t, err)
	select {
	case r := <-ch:
		require.NoError(t, r.Err)
		assert.Equal(t, want, r.Digest)
	case <-time.After(5 * time.Second):
		t.Fatal("digest never completed")
	}
}

func TestDigestHonorsContext(t *testing.T) {
	fake := abitest.New()
	fake.Delay = 50 * time.Millisecond
	lib := openLib(t, fake, cfgcore.Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err := lib.Digest(ctx, []byte("slow"))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
