package cfgcore

import "github.com/hsiuhsiu/cfgcore-go/internal/abi"

// OpenWithShim opens a Library over s instead of the linked native library.
func OpenWithShim(cfg Config, s abi.Shim) (*Library, error) {
	return open(cfg, s)
}
