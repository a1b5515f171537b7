//go:build cgo && !windows

package cgo

// #include <stdint.h>
import "C"
import (
	"sync"
	"sync/atomic"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
)

type digestFunc func(digest uint64, st abi.Status)

// digestMap stores pending completions keyed by the integer context handed
// to C.
var (
	digestMap sync.Map
	digestSeq atomic.Uintptr
)

func registerDigest(fn digestFunc) uintptr {
	id := digestSeq.Add(1)
	digestMap.Store(id, fn)
	return id
}

func takeDigest(id uintptr) digestFunc {
	v, ok := digestMap.LoadAndDelete(id)
	if !ok {
		return nil
	}
	return v.(digestFunc)
}

func pendingDigests() int {
	n := 0
	digestMap.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Callback functions - called from native worker threads back into Go

//export cfgshim_go_digest_done
func cfgshim_go_digest_done(ctx C.uintptr_t, code C.int32_t, message *C.char, digest C.uint64_t) {
	fn := takeDigest(uintptr(ctx))
	if fn == nil {
		return
	}
	st := abi.Status{Code: abi.Code(code)}
	if message != nil {
		st.Message = C.GoString(message)
	}
	fn(uint64(digest), st)
}
