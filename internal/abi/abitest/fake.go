// Package abitest provides a pure-Go stand-in for the cfgcore native core.
//
// Fake mirrors the native semantics closely enough for adapter tests and
// adds instrumentation the real library cannot offer: it counts concurrent
// entries, double frees and uses of released pointers, so tests can assert
// that the adapter never let such a call through.
package abitest

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
)

// Catalog is the set of bundled configs every store_open can reach. It
// matches the native core's built-in table.
var Catalog = map[string]map[string]string{
	"config-a": {"key1": "value1", "key2": "value2", "region": "eu-west-1"},
	"config-b": {"key1": "other1", "timeout": "30s"},
}

type fakeStore struct {
	data      map[string][]byte
	snapshots int
}

type fakeSnapshot struct {
	parent abi.Ptr
	data   map[string][]byte
}

// Fake implements abi.Shim in memory.
type Fake struct {
	// Desc is the description checksums are derived from. Defaults to the
	// builtin description.
	Desc *abi.Description
	// Version overrides the reported ABI version.
	Version string
	// Contract overrides the reported contract version when non-zero.
	Contract uint32
	// BadChecksums lists functions whose checksum is reported wrong.
	BadChecksums map[string]bool
	// FailMerge makes StoreMerge fail with this code after it has freed
	// src, the way the native core fails once both stores are valid.
	FailMerge abi.Code
	// Delay is added to every call to widen race windows.
	Delay time.Duration

	mu        sync.Mutex
	next      abi.Ptr
	stores    map[abi.Ptr]*fakeStore
	snapshots map[abi.Ptr]*fakeSnapshot
	released  map[abi.Ptr]bool

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	reentered   atomic.Int32
	misuse      atomic.Int32
	calls       atomic.Int64
	seq         atomic.Uint64
}

// New returns a Fake reporting the builtin description.
func New() *Fake {
	return &Fake{}
}

func (f *Fake) desc() *abi.Description {
	if f.Desc != nil {
		return f.Desc
	}
	return abi.MustBuiltin()
}

func (f *Fake) init() {
	if f.stores == nil {
		f.stores = make(map[abi.Ptr]*fakeStore)
		f.snapshots = make(map[abi.Ptr]*fakeSnapshot)
		f.released = make(map[abi.Ptr]bool)
	}
}

// enter marks a call in flight and applies Delay. It returns the function
// that ends the call.
func (f *Fake) enter() func() {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	if n > 1 {
		f.reentered.Add(1)
	}
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}
	return func() { f.inFlight.Add(-1) }
}

// Reentered reports how many calls started while another was in flight.
func (f *Fake) Reentered() int { return int(f.reentered.Load()) }

// MaxInFlight reports the highest number of simultaneous calls observed.
func (f *Fake) MaxInFlight() int { return int(f.maxInFlight.Load()) }

// Misuse reports how many calls used a released or unknown pointer, or
// released one twice.
func (f *Fake) Misuse() int { return int(f.misuse.Load()) }

// Calls reports the total number of shim calls.
func (f *Fake) Calls() int64 { return f.calls.Load() }

// Live reports the number of stores and snapshots not yet released.
func (f *Fake) Live() (stores, snapshots int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stores), len(f.snapshots)
}

func (f *Fake) ABIVersion() string {
	if f.Version != "" {
		return f.Version
	}
	return f.desc().ABIVersion
}

func (f *Fake) LibraryVersion() string { return "fake-" + f.desc().ABIVersion }

func (f *Fake) ContractVersion() uint32 {
	if f.Contract != 0 {
		return f.Contract
	}
	return f.desc().Contract
}

func (f *Fake) Checksum(fn string) uint32 {
	fun, ok := f.desc().Function(fn)
	if !ok {
		return 0
	}
	if f.BadChecksums[fn] {
		return fun.Checksum() ^ 0xffff
	}
	return fun.Checksum()
}

func fail(code abi.Code, format string, args ...any) abi.Status {
	return abi.Status{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (f *Fake) alloc() abi.Ptr {
	f.next += 16
	return f.next
}

func (f *Fake) store(p abi.Ptr) (*fakeStore, abi.Status) {
	s, ok := f.stores[p]
	if !ok {
		f.misuse.Add(1)
		return nil, fail(abi.CodeInvalidArgument, "invalid store pointer")
	}
	return s, abi.Status{}
}

func (f *Fake) StoreNew() (abi.Ptr, abi.Status) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	p := f.alloc()
	f.stores[p] = &fakeStore{data: map[string][]byte{}}
	return p, abi.Status{}
}

func (f *Fake) StoreOpen(name string) (abi.Ptr, abi.Status) {
	defer f.enter()()
	if name == "" {
		return abi.Null, fail(abi.CodeInvalidArgument, "empty config name")
	}
	cfg, ok := Catalog[name]
	if !ok {
		return abi.Null, fail(abi.CodeNotFound, "no bundled config named %s", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	s := &fakeStore{data: make(map[string][]byte, len(cfg))}
	for k, v := range cfg {
		s.data[k] = []byte(v)
	}
	p := f.alloc()
	f.stores[p] = s
	return p, abi.Status{}
}

func (f *Fake) StoreFree(p abi.Ptr) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	s, ok := f.stores[p]
	if !ok {
		f.misuse.Add(1)
		return
	}
	if s.snapshots > 0 {
		// The native core leaves dangling parents behind here.
		f.misuse.Add(1)
	}
	delete(f.stores, p)
	f.released[p] = true
}

func (f *Fake) StoreGet(p abi.Ptr, key string) ([]byte, abi.Status) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	s, st := f.store(p)
	if !st.OK() {
		return nil, st
	}
	v, ok := s.data[key]
	if !ok {
		return nil, fail(abi.CodeNotFound, "key not found: %s", key)
	}
	return append([]byte(nil), v...), abi.Status{}
}

func (f *Fake) StoreSet(p abi.Ptr, key string, value []byte) abi.Status {
	defer f.enter()()
	if key == "" || !utf8.ValidString(key) {
		return fail(abi.CodeInvalidArgument, "invalid key")
	}
	if len(value) > f.desc().Limits.MaxValueLen {
		return fail(abi.CodeTooLarge, "value of %d bytes exceeds limit", len(value))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	s, st := f.store(p)
	if !st.OK() {
		return st
	}
	s.data[key] = append([]byte(nil), value...)
	return abi.Status{}
}

func (f *Fake) StoreDelete(p abi.Ptr, key string) abi.Status {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	s, st := f.store(p)
	if !st.OK() {
		return st
	}
	if _, ok := s.data[key]; !ok {
		return fail(abi.CodeNotFound, "key not found: %s", key)
	}
	delete(s.data, key)
	return abi.Status{}
}

func (f *Fake) StoreLen(p abi.Ptr) (uint32, abi.Status) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	s, st := f.store(p)
	if !st.OK() {
		return 0, st
	}
	return uint32(len(s.data)), abi.Status{}
}

func (f *Fake) StoreKeys(p abi.Ptr) ([]string, abi.Status) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	s, st := f.store(p)
	if !st.OK() {
		return nil, st
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, abi.Status{}
}

func (f *Fake) StoreMerge(dst, src abi.Ptr) abi.Status {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	from, ok := f.stores[src]
	if !ok {
		f.misuse.Add(1)
		return fail(abi.CodeInvalidArgument, "invalid source store pointer")
	}
	delete(f.stores, src)
	f.released[src] = true
	if from.snapshots > 0 {
		f.misuse.Add(1)
	}
	if dst == src {
		f.misuse.Add(1)
		return fail(abi.CodeInvalidState, "merge of a store into itself")
	}
	to, st := f.store(dst)
	if !st.OK() {
		return st
	}
	if f.FailMerge != abi.CodeOK {
		return fail(f.FailMerge, "merge failed after freeing src")
	}
	for k, v := range from.data {
		to.data[k] = v
	}
	return abi.Status{}
}

func (f *Fake) SnapshotNew(p abi.Ptr) (abi.Ptr, abi.Status) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	s, st := f.store(p)
	if !st.OK() {
		return abi.Null, st
	}
	snap := &fakeSnapshot{parent: p, data: make(map[string][]byte, len(s.data))}
	for k, v := range s.data {
		snap.data[k] = append([]byte(nil), v...)
	}
	s.snapshots++
	sp := f.alloc()
	f.snapshots[sp] = snap
	return sp, abi.Status{}
}

func (f *Fake) SnapshotGet(sp abi.Ptr, key string) ([]byte, abi.Status) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	snap, ok := f.snapshots[sp]
	if !ok {
		f.misuse.Add(1)
		return nil, fail(abi.CodeInvalidArgument, "invalid snapshot pointer")
	}
	v, ok := snap.data[key]
	if !ok {
		return nil, fail(abi.CodeNotFound, "key not found: %s", key)
	}
	return append([]byte(nil), v...), abi.Status{}
}

func (f *Fake) SnapshotFree(sp abi.Ptr) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	snap, ok := f.snapshots[sp]
	if !ok {
		f.misuse.Add(1)
		return
	}
	if parent, ok := f.stores[snap.parent]; ok {
		parent.snapshots--
	} else {
		f.misuse.Add(1)
	}
	delete(f.snapshots, sp)
	f.released[sp] = true
}

func (f *Fake) EchoBytes(in []byte) ([]byte, abi.Status) {
	defer f.enter()()
	if len(in) > f.desc().Limits.MaxValueLen {
		return nil, fail(abi.CodeTooLarge, "buffer of %d bytes exceeds limit", len(in))
	}
	return append([]byte(nil), in...), abi.Status{}
}

func (f *Fake) EchoInt64(v int64) (int64, abi.Status) {
	defer f.enter()()
	return v, abi.Status{}
}

func (f *Fake) EchoFloat64(v float64) (float64, abi.Status) {
	defer f.enter()()
	return v, abi.Status{}
}

func (f *Fake) AddInt64(a, b int64) (int64, abi.Status) {
	defer f.enter()()
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fail(abi.CodeOverflow, "%d + %d overflows int64", a, b)
	}
	return sum, abi.Status{}
}

// Touch reads the shared sequence, sleeps, then writes it back, so
// interleaved calls lose updates exactly like the native probe does.
func (f *Fake) Touch(ms uint32) (uint64, abi.Status) {
	done := f.enter()
	defer done()
	if f.inFlight.Load() > 1 {
		return 0, fail(abi.CodeReentered, "touch entered while another call was active")
	}
	seq := f.seq.Load()
	time.Sleep(time.Duration(ms) * time.Millisecond)
	f.seq.Store(seq + 1)
	return seq + 1, abi.Status{}
}

func (f *Fake) DigestAsync(data []byte, done func(uint64, abi.Status)) abi.Status {
	defer f.enter()()
	if len(data) > f.desc().Limits.MaxValueLen {
		return fail(abi.CodeTooLarge, "buffer of %d bytes exceeds limit", len(data))
	}
	buf := append([]byte(nil), data...)
	delay := f.Delay
	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		h := fnv.New64a()
		_, _ = h.Write(buf)
		done(h.Sum64(), abi.Status{})
	}()
	return abi.Status{}
}

var _ abi.Shim = (*Fake)(nil)
