package cfgcore_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi/abitest"
	"github.com/hsiuhsiu/cfgcore-go/pkg/cfgcore"
)

func leakStoreWithSnapshot(t *testing.T, lib *cfgcore.Library) {
	t.Helper()
	ctx := context.Background()
	st, err := lib.OpenStore(ctx, "config-a")
	require.NoError(t, err)
	_, err = st.Snapshot(ctx)
	require.NoError(t, err)
}

func TestFinalizersReleaseLeakedHandles(t *testing.T) {
	fake := abitest.New()
	logger, logs := observed(zapcore.WarnLevel)
	lib := openLib(t, fake, cfgcore.Config{Logger: logger})

	leakStoreWithSnapshot(t, lib)
	require.Equal(t, 2, lib.Live())

	require.Eventually(t, func() bool {
		runtime.GC()
		return lib.Live() == 0
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, logs.FilterMessage("snapshot was not released; released by finalizer").Len())
	assert.Equal(t, 1, logs.FilterMessage("store was not released; released by finalizer").Len())
	assert.Zero(t, fake.Misuse())
}

func TestFinalizerAfterCloseIsQuiet(t *testing.T) {
	fake := abitest.New()
	logger, logs := observed(zapcore.WarnLevel)
	lib, err := cfgcore.OpenWithShim(cfgcore.Config{Logger: logger}, fake)
	require.NoError(t, err)

	leakStoreWithSnapshot(t, lib)
	require.NoError(t, lib.Close())

	for i := 0; i < 5; i++ {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Zero(t, fake.Misuse())
}
