// Package abi holds the plain-data contract shared by the C shim and the
// binding adapter: the status envelope returned by every native call, the
// opaque pointer type, the shim function table, and the machine-readable
// interface description that ships with the native library.
//
// Nothing in this package imports "C". The cgo implementation of [Shim]
// lives in internal/cgo; a pure-Go fake lives in internal/abi/abitest.
package abi
