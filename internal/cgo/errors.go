package cgo

import "errors"

// ErrNotBuilt is returned by New when the package was compiled without cgo
// or for a platform the native library does not support.
var ErrNotBuilt = errors.New("cgo: cfgcore native library not built (requires cgo on a non-windows platform)")
