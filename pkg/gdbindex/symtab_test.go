package gdbindex

import (
	"sync"
	"testing"
)

func TestSymbolTable_InsertReturnsStableHandle(t *testing.T) {
	st := NewSymbolTable(4)

	a := st.Insert([]byte("foo"), Hash([]byte("foo")))
	b := st.Insert([]byte("foo"), Hash([]byte("foo")))
	if a != b {
		t.Fatalf("expected the same handle for repeated inserts of the same name")
	}

	c := st.Insert([]byte("bar"), Hash([]byte("bar")))
	if a == c {
		t.Fatalf("expected distinct handles for distinct names")
	}
}

func TestSymbolTable_ConcurrentInsertDedupes(t *testing.T) {
	st := NewSymbolTable(8)

	var wg sync.WaitGroup
	handles := make([]*SymbolEntry, 100)
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			handles[i] = st.Insert([]byte("shared"), Hash([]byte("shared")))
		}()
	}
	wg.Wait()

	for _, h := range handles[1:] {
		if h != handles[0] {
			t.Fatalf("expected every concurrent insert of the same name to share a handle")
		}
	}
}

func TestSymbolTable_CollectOrdersByHashThenName(t *testing.T) {
	st := NewSymbolTable(8)
	names := []string{"zeta", "alpha", "mu"}
	for _, n := range names {
		st.Insert([]byte(n), HashString(n))
	}

	entries := st.Collect()
	if len(entries) != len(names) {
		t.Fatalf("expected %d entries, got %d", len(names), len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Hash > entries[i].Hash {
			t.Fatalf("entries not sorted by hash: %+v", entries)
		}
		if entries[i-1].Hash == entries[i].Hash && string(entries[i-1].Name) > string(entries[i].Name) {
			t.Fatalf("entries with equal hashes not sorted by name: %+v", entries)
		}
	}
}

func TestEstimateCardinality_CountsDistinctNames(t *testing.T) {
	cus := []*Compunit{
		{NameTuples: []NameTuple{{Name: []byte("a"), Hash: HashString("a")}, {Name: []byte("b"), Hash: HashString("b")}}},
		{NameTuples: []NameTuple{{Name: []byte("a"), Hash: HashString("a")}}},
	}
	est := EstimateCardinality(cus)
	if est == 0 {
		t.Fatalf("expected a nonzero cardinality estimate")
	}
}
