//go:build cgo && !windows

package cgo

/*
#cgo CFLAGS: -I${SRCDIR} -std=gnu11 -Wall
#cgo linux LDFLAGS: -lpthread

#include <stdlib.h>
#include <string.h>
#include "capi.h"
*/
import "C"
import (
	"unsafe"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
)

// nativeShim implements abi.Shim on top of capi.h. It is stateless.
type nativeShim struct{}

// New returns the shim backed by the compiled cfgcore library.
func New() (abi.Shim, error) {
	return nativeShim{}, nil
}

func (nativeShim) ABIVersion() string {
	return C.GoString(C.cfgshim_abi_version())
}

func (nativeShim) LibraryVersion() string {
	return C.GoString(C.cfgshim_library_version())
}

func (nativeShim) ContractVersion() uint32 {
	return uint32(C.cfgshim_contract_version())
}

func (nativeShim) Checksum(fn string) uint32 {
	return uint32(C.cfgshim_checksum(stringToCmem(fn)))
}

// ============ Stores ============

func (nativeShim) StoreNew() (abi.Ptr, abi.Status) {
	var st C.cfgshim_status_t
	var out C.uintptr_t
	rc := C.cfgshim_store_new(&st, &out)
	return abi.Ptr(out), statusOf(rc, &st)
}

func (nativeShim) StoreOpen(name string) (abi.Ptr, abi.Status) {
	var st C.cfgshim_status_t
	var out C.uintptr_t
	rc := C.cfgshim_store_open(&st, stringToCmem(name), &out)
	return abi.Ptr(out), statusOf(rc, &st)
}

func (nativeShim) StoreFree(store abi.Ptr) {
	C.cfgshim_store_free(C.uintptr_t(store))
}

func (nativeShim) StoreGet(store abi.Ptr, key string) ([]byte, abi.Status) {
	var st C.cfgshim_status_t
	var out C.cmem_t
	rc := C.cfgshim_store_get(&st, C.uintptr_t(store), stringToCmem(key), &out)
	return cmemToBytes(out), statusOf(rc, &st)
}

func (nativeShim) StoreSet(store abi.Ptr, key string, value []byte) abi.Status {
	var st C.cfgshim_status_t
	rc := C.cfgshim_store_set(&st, C.uintptr_t(store), stringToCmem(key), bytesToCmem(value))
	return statusOf(rc, &st)
}

func (nativeShim) StoreDelete(store abi.Ptr, key string) abi.Status {
	var st C.cfgshim_status_t
	rc := C.cfgshim_store_delete(&st, C.uintptr_t(store), stringToCmem(key))
	return statusOf(rc, &st)
}

func (nativeShim) StoreLen(store abi.Ptr) (uint32, abi.Status) {
	var st C.cfgshim_status_t
	var out C.uint32_t
	rc := C.cfgshim_store_len(&st, C.uintptr_t(store), &out)
	return uint32(out), statusOf(rc, &st)
}

func (nativeShim) StoreKeys(store abi.Ptr) ([]string, abi.Status) {
	var st C.cfgshim_status_t
	var out C.cmems_t
	rc := C.cfgshim_store_keys(&st, C.uintptr_t(store), &out)
	return cmemsToStrings(out), statusOf(rc, &st)
}

func (nativeShim) StoreMerge(dst, src abi.Ptr) abi.Status {
	var st C.cfgshim_status_t
	rc := C.cfgshim_store_merge(&st, C.uintptr_t(dst), C.uintptr_t(src))
	return statusOf(rc, &st)
}

// ============ Snapshots ============

func (nativeShim) SnapshotNew(store abi.Ptr) (abi.Ptr, abi.Status) {
	var st C.cfgshim_status_t
	var out C.uintptr_t
	rc := C.cfgshim_snapshot_new(&st, C.uintptr_t(store), &out)
	return abi.Ptr(out), statusOf(rc, &st)
}

func (nativeShim) SnapshotGet(snap abi.Ptr, key string) ([]byte, abi.Status) {
	var st C.cfgshim_status_t
	var out C.cmem_t
	rc := C.cfgshim_snapshot_get(&st, C.uintptr_t(snap), stringToCmem(key), &out)
	return cmemToBytes(out), statusOf(rc, &st)
}

func (nativeShim) SnapshotFree(snap abi.Ptr) {
	C.cfgshim_snapshot_free(C.uintptr_t(snap))
}

// ============ Echo ============

func (nativeShim) EchoBytes(in []byte) ([]byte, abi.Status) {
	var st C.cfgshim_status_t
	var out C.cmem_t
	rc := C.cfgshim_echo_bytes(&st, bytesToCmem(in), &out)
	return cmemToBytes(out), statusOf(rc, &st)
}

func (nativeShim) EchoInt64(v int64) (int64, abi.Status) {
	var st C.cfgshim_status_t
	var out C.int64_t
	rc := C.cfgshim_echo_i64(&st, C.int64_t(v), &out)
	return int64(out), statusOf(rc, &st)
}

func (nativeShim) EchoFloat64(v float64) (float64, abi.Status) {
	var st C.cfgshim_status_t
	var out C.double
	rc := C.cfgshim_echo_f64(&st, C.double(v), &out)
	return float64(out), statusOf(rc, &st)
}

func (nativeShim) AddInt64(a, b int64) (int64, abi.Status) {
	var st C.cfgshim_status_t
	var out C.int64_t
	rc := C.cfgshim_add_i64(&st, C.int64_t(a), C.int64_t(b), &out)
	return int64(out), statusOf(rc, &st)
}

func (nativeShim) Touch(ms uint32) (uint64, abi.Status) {
	var st C.cfgshim_status_t
	var out C.uint64_t
	rc := C.cfgshim_touch(&st, C.uint32_t(ms), &out)
	return uint64(out), statusOf(rc, &st)
}

// ============ Async ============

func (nativeShim) DigestAsync(data []byte, done func(digest uint64, st abi.Status)) abi.Status {
	id := registerDigest(done)
	var st C.cfgshim_status_t
	rc := C.cfgshim_digest_start(&st, bytesToCmem(data), C.uintptr_t(id))
	if rc != 0 {
		takeDigest(id)
	}
	return statusOf(rc, &st)
}

// Memory utilities

func statusOf(rc C.int32_t, st *C.cfgshim_status_t) abi.Status {
	if rc == 0 {
		return abi.Status{}
	}
	return abi.Status{Code: abi.Code(rc), Message: C.GoString(&st.message[0])}
}

// cmemToBytes copies a C-owned buffer into Go memory, then zeroes and frees
// it. Zero-length buffers still come back as non-nil allocations.
func cmemToBytes(cmem C.cmem_t) []byte {
	if cmem.data == nil {
		return nil
	}
	out := C.GoBytes(unsafe.Pointer(cmem.data), cmem.size)
	C.memset(unsafe.Pointer(cmem.data), 0, C.size_t(cmem.size))
	C.free(unsafe.Pointer(cmem.data))
	return out
}

func cmemsToStrings(cmems C.cmems_t) []string {
	defer func() {
		if cmems.data != nil {
			C.free(unsafe.Pointer(cmems.data))
		}
		if cmems.sizes != nil {
			C.free(unsafe.Pointer(cmems.sizes))
		}
	}()
	count := int(cmems.count)
	if count == 0 || cmems.sizes == nil {
		return nil
	}
	sizes := unsafe.Slice(cmems.sizes, count)
	out := make([]string, count)
	offset := 0
	for i, size := range sizes {
		out[i] = C.GoStringN((*C.char)(unsafe.Add(unsafe.Pointer(cmems.data), offset)), size)
		offset += int(size)
	}
	return out
}

// bytesToCmem borrows data for the duration of one C call.
func bytesToCmem(data []byte) C.cmem_t {
	var mem C.cmem_t
	mem.size = C.int(len(data))
	if len(data) > 0 {
		mem.data = (*C.uint8_t)(unsafe.Pointer(&data[0]))
	}
	return mem
}

func stringToCmem(s string) C.cmem_t {
	var mem C.cmem_t
	mem.size = C.int(len(s))
	if len(s) > 0 {
		mem.data = (*C.uint8_t)(unsafe.Pointer(unsafe.StringData(s)))
	}
	return mem
}
