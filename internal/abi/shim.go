package abi

// Shim is the function table of the flattened native ABI. Every method maps
// one-to-one onto a cfgshim_* C function. Implementations hold no state of
// their own beyond what the native core keeps.
//
// Ownership annotations follow interface.yaml: a Ptr passed to a *Free or as
// the src of StoreMerge is consumed and must not be passed again; returned
// Ptrs are owned by the caller.
type Shim interface {
	// ABIVersion reports the native ABI version string, e.g. "1.0".
	ABIVersion() string
	// LibraryVersion reports the native release version.
	LibraryVersion() string
	// ContractVersion reports the shim contract revision.
	ContractVersion() uint32
	// Checksum returns the signature checksum the native side was built
	// with, or 0 for an unknown function.
	Checksum(fn string) uint32

	StoreNew() (Ptr, Status)
	StoreOpen(name string) (Ptr, Status)
	StoreFree(store Ptr)
	StoreGet(store Ptr, key string) ([]byte, Status)
	StoreSet(store Ptr, key string, value []byte) Status
	StoreDelete(store Ptr, key string) Status
	StoreLen(store Ptr) (uint32, Status)
	StoreKeys(store Ptr) ([]string, Status)
	// StoreMerge moves every entry of src into dst. Once both pointers are
	// valid and distinct and src has no snapshots, src is consumed whether or
	// not the call succeeds.
	StoreMerge(dst, src Ptr) Status

	SnapshotNew(store Ptr) (Ptr, Status)
	SnapshotGet(snap Ptr, key string) ([]byte, Status)
	SnapshotFree(snap Ptr)

	EchoBytes(in []byte) ([]byte, Status)
	EchoInt64(v int64) (int64, Status)
	EchoFloat64(v float64) (float64, Status)
	AddInt64(a, b int64) (int64, Status)

	// Touch holds global native state for ms milliseconds and returns the
	// updated call sequence. It reports CodeReentered when entered
	// concurrently.
	Touch(ms uint32) (uint64, Status)

	// DigestAsync starts a digest on a native worker thread. When the
	// returned Status is OK, done is invoked exactly once, possibly from a
	// thread not owned by the Go runtime; it must not block.
	DigestAsync(data []byte, done func(digest uint64, st Status)) Status
}
