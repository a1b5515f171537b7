package bindings

import (
	"context"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
)

// NewStore creates an empty writable store.
func (a *Adapter) NewStore(ctx context.Context) (Handle, error) {
	leave, err := a.begin(ctx)
	if err != nil {
		return Handle{}, err
	}
	defer leave()

	ptr, st := a.shim.StoreNew()
	if err := nativeError("store_new", st); err != nil {
		return Handle{}, err
	}
	return a.handles.insert(KindStore, ptr, Handle{}), nil
}

// OpenStore opens a copy of the bundled config called name.
func (a *Adapter) OpenStore(ctx context.Context, name string) (Handle, error) {
	if err := a.marshal.text("store_open", "name", name); err != nil {
		return Handle{}, err
	}
	leave, err := a.begin(ctx)
	if err != nil {
		return Handle{}, err
	}
	defer leave()

	ptr, st := a.shim.StoreOpen(name)
	if err := nativeError("store_open", st); err != nil {
		return Handle{}, err
	}
	return a.handles.insert(KindStore, ptr, Handle{}), nil
}

// Get reads the value stored under key.
func (a *Adapter) Get(ctx context.Context, h Handle, key string) ([]byte, error) {
	return a.read(ctx, "store_get", h, KindStore, key, a.shim.StoreGet)
}

// GetString reads the value stored under key as UTF-8 text.
func (a *Adapter) GetString(ctx context.Context, h Handle, key string) (string, error) {
	b, err := a.Get(ctx, h, key)
	if err != nil {
		return "", err
	}
	return a.marshal.utf8Result("store_get", b)
}

// SnapshotGet reads the value stored under key in a snapshot.
func (a *Adapter) SnapshotGet(ctx context.Context, h Handle, key string) ([]byte, error) {
	return a.read(ctx, "snapshot_get", h, KindSnapshot, key, a.shim.SnapshotGet)
}

// SnapshotGetString is SnapshotGet decoded as UTF-8 text.
func (a *Adapter) SnapshotGetString(ctx context.Context, h Handle, key string) (string, error) {
	b, err := a.SnapshotGet(ctx, h, key)
	if err != nil {
		return "", err
	}
	return a.marshal.utf8Result("snapshot_get", b)
}

func (a *Adapter) read(ctx context.Context, op string, h Handle, kind Kind, key string,
	get func(abi.Ptr, string) ([]byte, abi.Status)) ([]byte, error) {
	if err := a.marshal.text(op, "key", key); err != nil {
		return nil, err
	}
	leave, err := a.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	ptr, done, err := a.handles.borrow(op, h, kind)
	if err != nil {
		return nil, err
	}
	defer done()

	v, st := get(ptr, key)
	if err := nativeError(op, st); err != nil {
		return nil, err
	}
	if v == nil {
		v = []byte{}
	}
	return v, nil
}

// Set stores value under key, replacing any previous value.
func (a *Adapter) Set(ctx context.Context, h Handle, key string, value []byte) error {
	if err := a.marshal.text("store_set", "key", key); err != nil {
		return err
	}
	if err := a.marshal.bytes("store_set", "value", value); err != nil {
		return err
	}
	return a.withStore(ctx, "store_set", h, func(p abi.Ptr) abi.Status {
		return a.shim.StoreSet(p, key, value)
	})
}

// Delete removes key from the store.
func (a *Adapter) Delete(ctx context.Context, h Handle, key string) error {
	if err := a.marshal.text("store_delete", "key", key); err != nil {
		return err
	}
	return a.withStore(ctx, "store_delete", h, func(p abi.Ptr) abi.Status {
		return a.shim.StoreDelete(p, key)
	})
}

// Len reports the number of keys in the store.
func (a *Adapter) Len(ctx context.Context, h Handle) (int, error) {
	var n uint32
	err := a.withStore(ctx, "store_len", h, func(p abi.Ptr) abi.Status {
		var st abi.Status
		n, st = a.shim.StoreLen(p)
		return st
	})
	return int(n), err
}

// Keys lists the store's keys in ascending byte order.
func (a *Adapter) Keys(ctx context.Context, h Handle) ([]string, error) {
	var keys []string
	err := a.withStore(ctx, "store_keys", h, func(p abi.Ptr) abi.Status {
		var st abi.Status
		keys, st = a.shim.StoreKeys(p)
		return st
	})
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (a *Adapter) withStore(ctx context.Context, op string, h Handle, call func(abi.Ptr) abi.Status) error {
	leave, err := a.begin(ctx)
	if err != nil {
		return err
	}
	defer leave()

	ptr, done, err := a.handles.borrow(op, h, KindStore)
	if err != nil {
		return err
	}
	defer done()
	return nativeError(op, call(ptr))
}

// Merge moves every entry of src into dst. src is consumed: once Merge has
// validated both handles, src is invalid whether or not the native call
// succeeds.
func (a *Adapter) Merge(ctx context.Context, dst, src Handle) error {
	leave, err := a.begin(ctx)
	if err != nil {
		return err
	}
	defer leave()

	dstPtr, srcPtr, done, err := a.handles.consume("store_merge", dst, src)
	if err != nil {
		return err
	}
	defer done()
	return nativeError("store_merge", a.shim.StoreMerge(dstPtr, srcPtr))
}

// Snapshot creates a read-only child view of a store. The store cannot be
// released or consumed while the snapshot is live.
func (a *Adapter) Snapshot(ctx context.Context, h Handle) (Handle, error) {
	leave, err := a.begin(ctx)
	if err != nil {
		return Handle{}, err
	}
	defer leave()

	ptr, done, err := a.handles.borrow("snapshot_new", h, KindStore)
	if err != nil {
		return Handle{}, err
	}
	defer done()

	sp, st := a.shim.SnapshotNew(ptr)
	if err := nativeError("snapshot_new", st); err != nil {
		return Handle{}, err
	}
	return a.handles.insert(KindSnapshot, sp, h), nil
}

// Release frees the native object behind h exactly once. Releasing a handle
// twice, a stale handle or one from another Adapter returns an
// *OwnershipError and never reaches native code.
func (a *Adapter) Release(h Handle) error {
	op := "store_free"
	if h.Kind() == KindSnapshot {
		op = "snapshot_free"
	}
	leave, err := a.begin(context.Background())
	if err != nil {
		return err
	}
	defer leave()

	ptr, err := a.handles.take(op, h, h.Kind())
	if err != nil {
		return err
	}
	if h.Kind() == KindSnapshot {
		a.shim.SnapshotFree(ptr)
	} else {
		a.shim.StoreFree(ptr)
	}
	return nil
}
