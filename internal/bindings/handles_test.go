package bindings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
)

func requireOwnership(t *testing.T, err error, reason string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrOwnership), "want ownership error, got %v", err)
	var oe *OwnershipError
	require.ErrorAs(t, err, &oe)
	assert.Contains(t, oe.Reason, reason)
}

func TestTableTakeExactlyOnce(t *testing.T) {
	tb := newTable()
	h := tb.insert(KindStore, abi.Ptr(0x10), Handle{})
	assert.Equal(t, 1, tb.count())

	ptr, err := tb.take("store_free", h, KindStore)
	require.NoError(t, err)
	assert.Equal(t, abi.Ptr(0x10), ptr)
	assert.Zero(t, tb.count())

	_, err = tb.take("store_free", h, KindStore)
	requireOwnership(t, err, "already released")
}

func TestTableStaleGeneration(t *testing.T) {
	tb := newTable()
	old := tb.insert(KindStore, abi.Ptr(0x10), Handle{})
	_, err := tb.take("store_free", old, KindStore)
	require.NoError(t, err)

	fresh := tb.insert(KindStore, abi.Ptr(0x20), Handle{})
	require.Equal(t, old.index, fresh.index, "slot should be reused")
	require.NotEqual(t, old.gen, fresh.gen)

	_, _, err = tb.borrow("store_get", old, KindStore)
	requireOwnership(t, err, "already released")

	ptr, done, err := tb.borrow("store_get", fresh, KindStore)
	require.NoError(t, err)
	done()
	assert.Equal(t, abi.Ptr(0x20), ptr)
}

func TestTableRejectsForeignZeroAndWrongKind(t *testing.T) {
	a, b := newTable(), newTable()
	h := a.insert(KindStore, abi.Ptr(0x10), Handle{})

	_, _, err := b.borrow("store_get", h, KindStore)
	requireOwnership(t, err, "different library instance")

	_, _, err = a.borrow("store_get", Handle{}, KindStore)
	requireOwnership(t, err, "nil handle")

	_, _, err = a.borrow("snapshot_get", h, KindSnapshot)
	requireOwnership(t, err, "want a snapshot")
}

func TestTableBusyHandle(t *testing.T) {
	tb := newTable()
	h := tb.insert(KindStore, abi.Ptr(0x10), Handle{})

	_, done, err := tb.borrow("store_get", h, KindStore)
	require.NoError(t, err)

	_, _, err = tb.borrow("store_get", h, KindStore)
	requireOwnership(t, err, "in use")
	_, err = tb.take("store_free", h, KindStore)
	requireOwnership(t, err, "in use")

	done()
	_, err = tb.take("store_free", h, KindStore)
	require.NoError(t, err)
}

func TestTableChildrenBlockRelease(t *testing.T) {
	tb := newTable()
	store := tb.insert(KindStore, abi.Ptr(0x10), Handle{})
	snap := tb.insert(KindSnapshot, abi.Ptr(0x20), store)

	_, err := tb.take("store_free", store, KindStore)
	requireOwnership(t, err, "live snapshot")

	_, err = tb.take("snapshot_free", snap, KindSnapshot)
	require.NoError(t, err)
	_, err = tb.take("store_free", store, KindStore)
	require.NoError(t, err)
}

func TestTableConsume(t *testing.T) {
	tb := newTable()
	dst := tb.insert(KindStore, abi.Ptr(0x10), Handle{})
	src := tb.insert(KindStore, abi.Ptr(0x20), Handle{})

	_, _, _, err := tb.consume("store_merge", dst, dst)
	requireOwnership(t, err, "into itself")

	dp, sp, done, err := tb.consume("store_merge", dst, src)
	require.NoError(t, err)
	assert.Equal(t, abi.Ptr(0x10), dp)
	assert.Equal(t, abi.Ptr(0x20), sp)

	_, _, err = tb.borrow("store_get", dst, KindStore)
	requireOwnership(t, err, "in use")
	done()

	_, _, err = tb.borrow("store_get", src, KindStore)
	requireOwnership(t, err, "already released")
	assert.Equal(t, 1, tb.count())
}

func TestTableConsumeRejectsSourceWithSnapshots(t *testing.T) {
	tb := newTable()
	dst := tb.insert(KindStore, abi.Ptr(0x10), Handle{})
	src := tb.insert(KindStore, abi.Ptr(0x20), Handle{})
	tb.insert(KindSnapshot, abi.Ptr(0x30), src)

	_, _, _, err := tb.consume("store_merge", dst, src)
	requireOwnership(t, err, "live snapshot")
	assert.Equal(t, 3, tb.count())
}

func TestTableDrainChildrenFirst(t *testing.T) {
	tb := newTable()
	s1 := tb.insert(KindStore, abi.Ptr(0x10), Handle{})
	tb.insert(KindSnapshot, abi.Ptr(0x20), s1)
	tb.insert(KindStore, abi.Ptr(0x30), Handle{})

	out := tb.drain()
	require.Len(t, out, 3)
	assert.Equal(t, KindSnapshot, out[0].kind)
	assert.Equal(t, KindStore, out[1].kind)
	assert.Equal(t, KindStore, out[2].kind)
	assert.Zero(t, tb.count())

	_, _, err := tb.borrow("store_get", s1, KindStore)
	requireOwnership(t, err, "already released")
}

func TestHandleString(t *testing.T) {
	assert.Equal(t, "handle(nil)", Handle{}.String())
	h := Handle{index: 3, gen: 2, owner: 9, kind: KindSnapshot}
	assert.Equal(t, "snapshot#3.2@9", h.String())
}
