//go:build !cgo || windows

package cgo

import "github.com/hsiuhsiu/cfgcore-go/internal/abi"

// New reports ErrNotBuilt on builds without the native library.
func New() (abi.Shim, error) {
	return nil, ErrNotBuilt
}
