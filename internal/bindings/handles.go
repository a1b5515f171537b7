package bindings

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
)

// Kind distinguishes the native object types a Handle can refer to.
type Kind uint8

const (
	KindStore Kind = iota + 1
	KindSnapshot
)

func (k Kind) String() string {
	switch k {
	case KindStore:
		return "store"
	case KindSnapshot:
		return "snapshot"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Handle is a generational reference to a native object owned by one
// Adapter. The zero Handle is never valid. Handles are plain values; copying
// one does not duplicate ownership, the table decides which copy still works.
type Handle struct {
	index uint32
	gen   uint32
	owner uint32
	kind  Kind
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h == Handle{} }

// Kind reports the object type h was issued for.
func (h Handle) Kind() Kind { return h.kind }

func (h Handle) String() string {
	if h.IsZero() {
		return "handle(nil)"
	}
	return fmt.Sprintf("%s#%d.%d@%d", h.kind, h.index, h.gen, h.owner)
}

var tableSeq atomic.Uint32

type slot struct {
	ptr      abi.Ptr
	gen      uint32
	kind     Kind
	live     bool
	busy     bool
	parent   uint32 // index of the parent slot + 1, or 0
	children int
}

// table maps handles to native pointers. Slot 0 is reserved so the zero
// Handle never resolves.
type table struct {
	mu    sync.Mutex
	owner uint32
	slots []slot
	free  []uint32
	live  int
}

func newTable() *table {
	return &table{
		owner: tableSeq.Add(1),
		slots: make([]slot, 1),
	}
}

// lookup validates h and returns its slot. Callers hold t.mu.
func (t *table) lookup(op string, h Handle, kind Kind) (*slot, error) {
	if h.IsZero() {
		return nil, &OwnershipError{Op: op, Handle: h, Reason: "nil handle"}
	}
	if h.owner != t.owner {
		return nil, &OwnershipError{Op: op, Handle: h, Reason: "handle belongs to a different library instance"}
	}
	if h.kind != kind {
		return nil, &OwnershipError{Op: op, Handle: h, Reason: fmt.Sprintf("handle is a %s, want a %s", h.kind, kind)}
	}
	if h.index == 0 || int(h.index) >= len(t.slots) {
		return nil, &OwnershipError{Op: op, Handle: h, Reason: "unknown handle"}
	}
	s := &t.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil, &OwnershipError{Op: op, Handle: h, Reason: "handle already released"}
	}
	return s, nil
}

// insert records a freshly returned native pointer. parent, when non-zero,
// must be a live handle; its child count is raised.
func (t *table) insert(kind Kind, ptr abi.Ptr, parent Handle) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.slots = append(t.slots, slot{gen: 0})
		idx = uint32(len(t.slots) - 1)
	}
	s := &t.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.ptr = ptr
	s.kind = kind
	s.live = true
	s.busy = false
	s.children = 0
	s.parent = 0
	if !parent.IsZero() {
		s.parent = parent.index + 1
		t.slots[parent.index].children++
	}
	t.live++
	return Handle{index: idx, gen: s.gen, owner: t.owner, kind: kind}
}

// borrow marks h busy for the duration of one native call and returns its
// pointer. The returned func clears the mark.
func (t *table) borrow(op string, h Handle, kind Kind) (abi.Ptr, func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.lookup(op, h, kind)
	if err != nil {
		return abi.Null, nil, err
	}
	if s.busy {
		return abi.Null, nil, &OwnershipError{Op: op, Handle: h, Reason: "handle is in use by another call"}
	}
	s.busy = true
	idx := h.index
	return s.ptr, func() {
		t.mu.Lock()
		t.slots[idx].busy = false
		t.mu.Unlock()
	}, nil
}

// take removes h from the table and returns the pointer the caller must now
// free exactly once.
func (t *table) take(op string, h Handle, kind Kind) (abi.Ptr, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.lookup(op, h, kind)
	if err != nil {
		return abi.Null, err
	}
	if err := t.releasable(op, h, s); err != nil {
		return abi.Null, err
	}
	return t.drop(h.index), nil
}

func (t *table) releasable(op string, h Handle, s *slot) error {
	if s.busy {
		return &OwnershipError{Op: op, Handle: h, Reason: "handle is in use by another call"}
	}
	if s.children > 0 {
		return &OwnershipError{Op: op, Handle: h, Reason: fmt.Sprintf("%d live snapshot(s) must be released first", s.children)}
	}
	return nil
}

// drop retires slot idx. Callers hold t.mu.
func (t *table) drop(idx uint32) abi.Ptr {
	s := &t.slots[idx]
	ptr := s.ptr
	if s.parent != 0 {
		t.slots[s.parent-1].children--
	}
	s.ptr = abi.Null
	s.live = false
	s.busy = false
	s.parent = 0
	t.free = append(t.free, idx)
	t.live--
	return ptr
}

// consume validates dst and src together, removes src and marks dst busy in
// one step, so no other call can observe src between the check and the
// transfer.
func (t *table) consume(op string, dst, src Handle) (dstPtr, srcPtr abi.Ptr, done func(), err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if dst == src {
		return abi.Null, abi.Null, nil, &OwnershipError{Op: op, Handle: src, Reason: "cannot merge a store into itself"}
	}
	d, err := t.lookup(op, dst, KindStore)
	if err != nil {
		return abi.Null, abi.Null, nil, err
	}
	s, err := t.lookup(op, src, KindStore)
	if err != nil {
		return abi.Null, abi.Null, nil, err
	}
	if d.busy {
		return abi.Null, abi.Null, nil, &OwnershipError{Op: op, Handle: dst, Reason: "handle is in use by another call"}
	}
	if err := t.releasable(op, src, s); err != nil {
		return abi.Null, abi.Null, nil, err
	}
	d.busy = true
	idx := dst.index
	return d.ptr, t.drop(src.index), func() {
		t.mu.Lock()
		t.slots[idx].busy = false
		t.mu.Unlock()
	}, nil
}

type drained struct {
	kind Kind
	ptr  abi.Ptr
}

// drain retires every live slot and returns the pointers children first.
func (t *table) drain() []drained {
	t.mu.Lock()
	defer t.mu.Unlock()
	var snaps, stores []drained
	for i := 1; i < len(t.slots); i++ {
		s := &t.slots[i]
		if !s.live {
			continue
		}
		d := drained{kind: s.kind, ptr: s.ptr}
		if s.kind == KindSnapshot {
			snaps = append(snaps, d)
		} else {
			stores = append(stores, d)
		}
		s.ptr = abi.Null
		s.live = false
		s.busy = false
		s.parent = 0
		s.children = 0
		t.free = append(t.free, uint32(i))
	}
	t.live = 0
	return append(snaps, stores...)
}

func (t *table) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}
