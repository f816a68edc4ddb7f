package gdbindex

import (
	"bytes"
	"sort"
	"sync"

	"github.com/go-gdbindex/gdbindex/pkg/dwarf/ranges"
)

// NameTuple is one (name, hash, type byte) contributed by an input
// object's pubnames/pubtypes section.
type NameTuple struct {
	Name []byte
	Hash uint32
	Type byte
}

// Compunit is one compilation unit contributed to the output
// .debug_info. Ranges and NameTuples are populated by the range
// extraction and pubname-attachment phases respectively; Entries is
// filled in once the global symbol table exists, positionally aligned
// with NameTuples.
type Compunit struct {
	Offset uint64
	Size   uint64
	Ranges []ranges.Range

	mu         sync.Mutex
	NameTuples []NameTuple
	Entries    []*SymbolEntry
}

// AddNameTuple appends a raw (name, type) contribution. Safe to call
// concurrently across input objects: build.go fans pubname attachment
// out per object, and more than one object's table can resolve to the
// same CU, so the append itself is guarded.
func (cu *Compunit) AddNameTuple(name []byte, typeByte byte) {
	t := NameTuple{Name: name, Hash: Hash(name), Type: typeByte}
	cu.mu.Lock()
	cu.NameTuples = append(cu.NameTuples, t)
	cu.mu.Unlock()
}

// SortAndDedupe orders NameTuples lexicographically on (hash, type,
// name) and removes adjacent duplicates, matching what compilers
// produce when the same declaration is emitted once per COMDAT group.
func (cu *Compunit) SortAndDedupe() {
	sort.Slice(cu.NameTuples, func(i, j int) bool {
		return tupleLess(cu.NameTuples[i], cu.NameTuples[j])
	})

	out := cu.NameTuples[:0]
	for i, t := range cu.NameTuples {
		if i > 0 && tupleEqual(out[len(out)-1], t) {
			continue
		}
		out = append(out, t)
	}
	cu.NameTuples = out
}

func tupleLess(a, b NameTuple) bool {
	if a.Hash != b.Hash {
		return a.Hash < b.Hash
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return bytes.Compare(a.Name, b.Name) < 0
}

func tupleEqual(a, b NameTuple) bool {
	return a.Hash == b.Hash && a.Type == b.Type && bytes.Equal(a.Name, b.Name)
}
