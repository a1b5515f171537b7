package bindings

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
	"github.com/hsiuhsiu/cfgcore-go/internal/cgo"
)

// DefaultMaxConcurrentCalls bounds the gate of a concurrent-class library
// when Config.MaxConcurrentCalls is zero.
const DefaultMaxConcurrentCalls = 4

// Config captures the parameters of one Adapter.
type Config struct {
	// Shim overrides the native function table. Nil selects the cgo shim.
	Shim abi.Shim

	// Description is the interface description to verify against. Nil
	// selects the embedded one.
	Description *abi.Description

	// ExpectedABIVersion overrides the abi_version from the description.
	ExpectedABIVersion string

	// Serialize forces one call at a time even when the description
	// declares the library concurrent. A configuration can only make the
	// gate stricter than the declared class.
	Serialize bool

	// MaxConcurrentCalls bounds a concurrent-class gate. Ignored for
	// serialized libraries.
	MaxConcurrentCalls int

	// CallRate limits admissions to this many calls per second. Zero means
	// unlimited.
	CallRate float64
	// CallBurst is the limiter's burst size; defaults to 1.
	CallBurst int

	Logger *zap.Logger
}

// Adapter owns one opened native library: its call gate, its handle table
// and the description it was verified against.
type Adapter struct {
	shim    abi.Shim
	desc    *abi.Description
	gate    *gate
	handles *table
	marshal marshaler
	log     *zap.Logger

	closeMu sync.RWMutex
	closed  bool
}

// Open verifies the native ABI and returns a ready Adapter. A mismatch is
// fatal: no operation is possible on a library that failed verification.
func Open(cfg Config) (*Adapter, error) {
	desc := cfg.Description
	if desc == nil {
		d, err := abi.Builtin()
		if err != nil {
			return nil, err
		}
		desc = d
	} else if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("bindings: invalid interface description: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	shim := cfg.Shim
	if shim == nil {
		s, err := cgo.New()
		if err != nil {
			return nil, err
		}
		shim = s
	}

	if mm := abi.Verify(desc, shim, cfg.ExpectedABIVersion); len(mm) > 0 {
		log.Error("native ABI mismatch",
			zap.String("library", desc.Library),
			zap.Stringers("mismatches", mm))
		return nil, &ABIError{Library: desc.Library, Mismatches: mm}
	}

	g, err := newGate(desc.ThreadSafety, cfg)
	if err != nil {
		return nil, err
	}
	if desc.ThreadSafety == abi.Serialized && cfg.MaxConcurrentCalls > 1 {
		log.Warn("ignoring MaxConcurrentCalls for a serialized library",
			zap.Int("max_concurrent_calls", cfg.MaxConcurrentCalls))
	}

	a := &Adapter{
		shim:    shim,
		desc:    desc,
		gate:    g,
		handles: newTable(),
		marshal: marshaler{limits: desc.Limits},
		log:     log.With(zap.String("library", desc.Library)),
	}
	a.log.Info("native library opened",
		zap.String("abi_version", shim.ABIVersion()),
		zap.String("library_version", shim.LibraryVersion()),
		zap.String("thread_safety", string(desc.ThreadSafety)),
		zap.Int64("gate_slots", g.slots))
	return a, nil
}

// begin admits one native call. The returned func ends it.
func (a *Adapter) begin(ctx context.Context) (func(), error) {
	a.closeMu.RLock()
	if a.closed {
		a.closeMu.RUnlock()
		return nil, ErrClosed
	}
	leave, err := a.gate.enter(ctx)
	if err != nil {
		a.closeMu.RUnlock()
		return nil, err
	}
	return func() {
		leave()
		a.closeMu.RUnlock()
	}, nil
}

// Close waits for in-flight calls, then releases every handle still live,
// snapshots before stores. A second Close returns ErrClosed.
func (a *Adapter) Close() error {
	a.closeMu.Lock()
	defer a.closeMu.Unlock()
	if a.closed {
		return ErrClosed
	}
	a.closed = true

	leaked := a.handles.drain()
	for _, d := range leaked {
		switch d.kind {
		case KindSnapshot:
			a.shim.SnapshotFree(d.ptr)
		case KindStore:
			a.shim.StoreFree(d.ptr)
		}
	}
	if len(leaked) > 0 {
		a.log.Warn("released handles still open at close", zap.Int("count", len(leaked)))
	}
	a.log.Info("native library closed")
	return nil
}

// Closed reports whether Close has been called.
func (a *Adapter) Closed() bool {
	a.closeMu.RLock()
	defer a.closeMu.RUnlock()
	return a.closed
}

// Live reports the number of handles not yet released.
func (a *Adapter) Live() int { return a.handles.count() }

// NativeVersion reports the native library's release version.
func (a *Adapter) NativeVersion() string { return a.shim.LibraryVersion() }

// ABIVersion reports the native ABI version.
func (a *Adapter) ABIVersion() string { return a.shim.ABIVersion() }

// Serialized reports whether the gate admits one call at a time.
func (a *Adapter) Serialized() bool { return a.gate.serialized() }
