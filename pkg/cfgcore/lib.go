package cfgcore

import (
	"context"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
	"github.com/hsiuhsiu/cfgcore-go/internal/bindings"
	"github.com/hsiuhsiu/cfgcore-go/pkg/cfgcore/logging"
)

// Library represents an opened, verified handle to the native cfgcore
// library. All stores and snapshots belong to the Library that created them.
type Library struct {
	cfg     Config
	adapter *bindings.Adapter
	log     logging.Logger
}

// Open verifies the native ABI and prepares the library for use. A version
// or checksum mismatch fails with ErrABIMismatch before any other call is
// made.
func Open(cfg Config) (*Library, error) {
	return open(cfg, nil)
}

func open(cfg Config, shim abi.Shim) (*Library, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bc := cfg.toBindings()
	bc.Shim = shim
	a, err := bindings.Open(bc)
	if err != nil {
		return nil, err
	}
	return &Library{cfg: cfg, adapter: a, log: logging.New(cfg.Logger)}, nil
}

// Close releases every store and snapshot still open and shuts the library
// down. Calling Close twice returns ErrLibraryClosed.
func (l *Library) Close() error {
	if l == nil {
		return nil
	}
	return l.adapter.Close()
}

// NativeVersion reports the linked native library's release version.
func (l *Library) NativeVersion() string {
	return l.adapter.NativeVersion()
}

// ABIVersion reports the native ABI version the library was verified at.
func (l *Library) ABIVersion() string {
	return l.adapter.ABIVersion()
}

// Live reports how many stores and snapshots have not been released.
func (l *Library) Live() int {
	return l.adapter.Live()
}

// OpenStore opens a private copy of the bundled config called name.
func (l *Library) OpenStore(ctx context.Context, name string) (*Store, error) {
	h, err := l.adapter.OpenStore(ctx, name)
	if err != nil {
		return nil, err
	}
	l.log.Debug(ctx, "store opened", "name", name, "handle", h.String())
	return newStore(l, h, name), nil
}

// NewStore creates an empty writable store.
func (l *Library) NewStore(ctx context.Context) (*Store, error) {
	h, err := l.adapter.NewStore(ctx)
	if err != nil {
		return nil, err
	}
	l.log.Debug(ctx, "store created", "handle", h.String())
	return newStore(l, h, ""), nil
}
