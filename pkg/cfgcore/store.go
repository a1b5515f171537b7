package cfgcore

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"unicode/utf8"

	"github.com/hsiuhsiu/cfgcore-go/internal/bindings"
	"github.com/hsiuhsiu/cfgcore-go/pkg/cfgcore/logging"
)

// Store is a writable native configuration store.
//
// Memory Management:
// Stores must be released by calling Release (or Close) exactly once. A
// finalizer is set as a safety net and logs a warning when it has to release
// a leaked store, but relying on it keeps native memory alive until the next
// GC cycle.
//
// Example:
//
//	st, err := lib.OpenStore(ctx, "config-a")
//	if err != nil {
//	    return err
//	}
//	defer st.Release()
type Store struct {
	lib      *Library
	h        bindings.Handle
	name     string
	released atomic.Bool
}

func newStore(l *Library, h bindings.Handle, name string) *Store {
	s := &Store{lib: l, h: h, name: name}
	runtime.SetFinalizer(s, (*Store).finalize)
	return s
}

func (s *Store) finalize() {
	if s.released.Load() {
		return
	}
	ctx := context.Background()
	err := s.lib.adapter.Release(s.h)
	switch {
	case err == nil:
		s.lib.log.Warn(ctx, "store was not released; released by finalizer", "handle", s.h.String(), "name", s.name)
	case errors.Is(err, ErrLibraryClosed):
	default:
		s.lib.log.Error(ctx, "finalizer could not release store", "handle", s.h.String(), "error", err)
	}
}

// Name reports the bundled config the store was opened from, or "" for a
// store created with NewStore.
func (s *Store) Name() string { return s.name }

func (s *Store) String() string { return s.h.String() }

// ReadValue returns the UTF-8 value stored under key.
func (s *Store) ReadValue(ctx context.Context, key string) (string, error) {
	return s.lib.adapter.GetString(ctx, s.h, key)
}

// ReadBytes returns the raw value stored under key.
func (s *Store) ReadBytes(ctx context.Context, key string) ([]byte, error) {
	return s.lib.adapter.Get(ctx, s.h, key)
}

// SetValue stores a UTF-8 value under key.
func (s *Store) SetValue(ctx context.Context, key, value string) error {
	if !utf8.ValidString(value) {
		return &MarshalError{Op: "Store.SetValue", Arg: "value", Reason: "not valid UTF-8"}
	}
	return s.SetBytes(ctx, key, []byte(value))
}

// SetBytes stores a raw value under key.
func (s *Store) SetBytes(ctx context.Context, key string, value []byte) error {
	if err := s.lib.adapter.Set(ctx, s.h, key, value); err != nil {
		return err
	}
	s.lib.log.Debug(ctx, "value set", "handle", s.h.String(), "key", key, logging.Redacted("value"))
	return nil
}

// Delete removes key. Deleting a missing key fails with ErrNotFound.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.lib.adapter.Delete(ctx, s.h, key)
}

// Len reports the number of keys.
func (s *Store) Len(ctx context.Context) (int, error) {
	return s.lib.adapter.Len(ctx, s.h)
}

// Keys lists every key in ascending byte order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	return s.lib.adapter.Keys(ctx, s.h)
}

// Snapshot returns a read-only copy of the store's current contents. The
// store cannot be released while the snapshot is live.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s.released.Load() {
		return nil, &OwnershipError{Op: "Store.Snapshot", Handle: s.h, Reason: "store already released"}
	}
	h, err := s.lib.adapter.Snapshot(ctx, s.h)
	if err != nil {
		return nil, err
	}
	return newSnapshot(s, h), nil
}

// Merge moves every entry of src into s, overwriting existing keys. src is
// consumed: after Merge returns nil or a native error, src is invalid and
// must not be released. Merging a store into itself, or stores from
// different libraries, fails before anything is consumed.
func (s *Store) Merge(ctx context.Context, src *Store) error {
	switch {
	case src == nil:
		return &OwnershipError{Op: "Store.Merge", Handle: s.h, Reason: "nil source store"}
	case src == s || src.h == s.h:
		return &OwnershipError{Op: "Store.Merge", Handle: s.h, Reason: "cannot merge a store into itself"}
	case src.lib != s.lib:
		return &OwnershipError{Op: "Store.Merge", Handle: src.h, Reason: "stores belong to different libraries"}
	}
	err := s.lib.adapter.Merge(ctx, s.h, src.h)
	if err == nil || errors.Is(err, ErrNativeFailure) {
		src.consumed()
	}
	return err
}

func (s *Store) consumed() {
	s.released.Store(true)
	runtime.SetFinalizer(s, nil)
}

// Release frees the native store. It fails with ErrOwnership if the store
// was already released or consumed, or still has live snapshots.
func (s *Store) Release() error {
	if s == nil {
		return &OwnershipError{Op: "Store.Release", Reason: "nil store"}
	}
	if err := s.lib.adapter.Release(s.h); err != nil {
		return err
	}
	s.consumed()
	return nil
}

// Close is Release, for use as an io.Closer.
func (s *Store) Close() error { return s.Release() }
