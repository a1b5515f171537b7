package cfgcore

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"

	"github.com/hsiuhsiu/cfgcore-go/internal/bindings"
)

// Snapshot is a read-only copy of a Store taken at one point in time. Later
// writes to the store are not visible through it. The parent store cannot be
// released until every snapshot of it has been released.
type Snapshot struct {
	parent   *Store
	h        bindings.Handle
	released atomic.Bool
}

func newSnapshot(parent *Store, h bindings.Handle) *Snapshot {
	s := &Snapshot{parent: parent, h: h}
	runtime.SetFinalizer(s, (*Snapshot).finalize)
	return s
}

// The snapshot references its parent, so this always runs before the
// parent's finalizer.
func (s *Snapshot) finalize() {
	if s.released.Load() {
		return
	}
	lib := s.parent.lib
	ctx := context.Background()
	err := lib.adapter.Release(s.h)
	switch {
	case err == nil:
		lib.log.Warn(ctx, "snapshot was not released; released by finalizer", "handle", s.h.String())
	case errors.Is(err, ErrLibraryClosed):
	default:
		lib.log.Error(ctx, "finalizer could not release snapshot", "handle", s.h.String(), "error", err)
	}
}

func (s *Snapshot) String() string { return s.h.String() }

// Store returns the store the snapshot was taken from.
func (s *Snapshot) Store() *Store { return s.parent }

// ReadValue returns the UTF-8 value stored under key when the snapshot was
// taken.
func (s *Snapshot) ReadValue(ctx context.Context, key string) (string, error) {
	return s.parent.lib.adapter.SnapshotGetString(ctx, s.h, key)
}

// ReadBytes returns the raw value stored under key when the snapshot was
// taken.
func (s *Snapshot) ReadBytes(ctx context.Context, key string) ([]byte, error) {
	return s.parent.lib.adapter.SnapshotGet(ctx, s.h, key)
}

// Release frees the snapshot. Releasing twice fails with ErrOwnership.
func (s *Snapshot) Release() error {
	if s == nil {
		return &OwnershipError{Op: "Snapshot.Release", Reason: "nil snapshot"}
	}
	if err := s.parent.lib.adapter.Release(s.h); err != nil {
		return err
	}
	s.released.Store(true)
	runtime.SetFinalizer(s, nil)
	return nil
}

// Close is Release, for use as an io.Closer.
func (s *Snapshot) Close() error { return s.Release() }
