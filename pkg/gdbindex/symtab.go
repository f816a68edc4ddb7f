package gdbindex

import (
	"bytes"
	"sort"
	"sync/atomic"
)

// SymbolEntry is the global, deduplicated handle for one (name, hash)
// pair. Count is incremented atomically once per occurrence across
// every CU that contributes the name; NameOffset and TypeOffset are
// filled in by the layout pass once the constant pool's shape is
// known.
type SymbolEntry struct {
	Name  []byte
	Hash  uint32
	Count uint32

	NameOffset uint32
	TypeOffset uint32
}

type symSlot struct {
	key   string
	hash  uint32
	entry *SymbolEntry
}

// SymbolTable is a concurrent, open-addressed map from (hash, name) to
// a stable *SymbolEntry, sized once from a HyperLogLog cardinality
// estimate and never resized. Insertion is lock-free: each probed slot
// is claimed with a single atomic.Pointer CompareAndSwap, matching the
// "open-addressed table sized once ... with lock-free insertion"
// design noted for this component.
type SymbolTable struct {
	slots []atomic.Pointer[symSlot]
}

// NewSymbolTable sizes the table from an estimated cardinality,
// estimated by feeding every tuple's hash through a HyperLogLog
// counter.
func NewSymbolTable(estCardinality uint64) *SymbolTable {
	capacity := estCardinality * 3 / 2
	if capacity < 16 {
		capacity = 16
	}
	return &SymbolTable{slots: make([]atomic.Pointer[symSlot], capacity)}
}

// EstimateCardinality runs a HyperLogLog pass over every tuple hash a
// CU contributes.
func EstimateCardinality(cus []*Compunit) uint64 {
	hll := newHyperLogLog(14)
	for _, cu := range cus {
		for _, t := range cu.NameTuples {
			hll.Add(t.Hash)
		}
	}
	return hll.Estimate()
}

// Insert returns the stable handle for (name, hash), creating one on
// first insertion. Safe for concurrent use.
func (st *SymbolTable) Insert(name []byte, hash uint32) *SymbolEntry {
	n := uint32(len(st.slots))
	key := string(name)
	start := hash % n

	for i := uint32(0); i < n; i++ {
		j := (start + i) % n
		slot := &st.slots[j]
		for {
			cur := slot.Load()
			if cur == nil {
				candidate := &symSlot{
					key:  key,
					hash: hash,
					entry: &SymbolEntry{
						Name: append([]byte(nil), name...),
						Hash: hash,
					},
				}
				if slot.CompareAndSwap(nil, candidate) {
					return candidate.entry
				}
				continue
			}
			if cur.hash == hash && cur.key == key {
				return cur.entry
			}
			break
		}
	}
	panic("gdbindex: symbol table undersized for its own cardinality estimate")
}

// atomicAddCount increments entry's occurrence count. Safe for
// concurrent use across every CU that contributes the same symbol.
func atomicAddCount(entry *SymbolEntry) {
	atomic.AddUint32(&entry.Count, 1)
}

// Collect gathers every inserted entry and orders it by (hash, name),
// which is the order the layout pass lays out the constant pool in
// and therefore the only order this pipeline's output depends on.
func (st *SymbolTable) Collect() []*SymbolEntry {
	var out []*SymbolEntry
	for i := range st.slots {
		if s := st.slots[i].Load(); s != nil {
			out = append(out, s.entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hash != out[j].Hash {
			return out[i].Hash < out[j].Hash
		}
		return bytes.Compare(out[i].Name, out[j].Name) < 0
	})
	return out
}
