// Package cgo contains all CGO bindings to the cfgcore native library.
//
// # Design Principles
//
// 1. Isolation: ALL CGO code lives in this package. No other package should
//    import "C".
//
// 2. Flat surface: Go only calls the cfgshim_* functions declared in capi.h.
//    They take fixed-width integers, cmem_t buffer descriptors and a per-call
//    cfgshim_status_t. The native core (core.h) is never called directly.
//
// 3. Error Handling: the native core keeps its last error in thread-local
//    storage. The shim copies it into the caller's status value inside the
//    same C call, because a goroutine may run on a different OS thread for
//    its next cgo call.
//
// 4. Memory Management: buffers returned by C are copied into Go memory,
//    zeroed and freed before the call returns to the adapter. Native objects
//    travel as abi.Ptr values; their lifetime is managed by
//    internal/bindings.
//
// 5. Callbacks: native worker threads call back into Go through exported
//    functions. C only ever holds an integer registry key, never a Go
//    pointer.
//
// # Threading
//
// cfgcore is NOT reentrant. This package adds no locking; callers must go
// through the call gate in internal/bindings.
package cgo
