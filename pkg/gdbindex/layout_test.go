package gdbindex

import (
	"encoding/binary"
	"testing"

	"github.com/go-gdbindex/gdbindex/pkg/dwarf/ranges"
)

func TestComputeLayout_SingleCUNoSymbols(t *testing.T) {
	cus := []*Compunit{
		{Offset: 0, Size: 30, Ranges: []ranges.Range{{Low: 0x1000, High: 0x1100}}},
	}

	l := computeLayout(cus, nil)
	if l.cuListOffset != 24 {
		t.Errorf("cuListOffset = %d, want 24", l.cuListOffset)
	}
	if l.cuTypesOffset != 40 {
		t.Errorf("cuTypesOffset = %d, want 40", l.cuTypesOffset)
	}
	if l.rangesOffset != 40 {
		t.Errorf("rangesOffset = %d, want 40", l.rangesOffset)
	}
	if l.symtabOffset != 60 {
		t.Errorf("symtabOffset = %d, want 60", l.symtabOffset)
	}
	if l.htSize != 1 {
		t.Errorf("htSize = %d, want 1 (next_pow2(ceil(0*5/4)))", l.htSize)
	}
	if l.constPoolOffset != 68 {
		t.Errorf("constPoolOffset = %d, want 68", l.constPoolOffset)
	}
	if l.totalLength != 68 {
		t.Errorf("totalLength = %d, want 68", l.totalLength)
	}
}

func TestEmit_SingleCUContiguousRange(t *testing.T) {
	cus := []*Compunit{
		{Offset: 0, Size: 30, Ranges: []ranges.Range{{Low: 0x1000, High: 0x1100}}},
	}
	l := computeLayout(cus, nil)
	buf := emit(cus, nil, l)

	if binary.LittleEndian.Uint32(buf[0:4]) != 7 {
		t.Fatalf("version = %d, want 7", binary.LittleEndian.Uint32(buf[0:4]))
	}

	cuRec := buf[l.cuListOffset:]
	if off := binary.LittleEndian.Uint64(cuRec[0:8]); off != 0 {
		t.Errorf("cu offset = %d, want 0", off)
	}
	if sz := binary.LittleEndian.Uint64(cuRec[8:16]); sz != 30 {
		t.Errorf("cu size = %d, want 30", sz)
	}

	area := buf[l.rangesOffset:]
	if lo := binary.LittleEndian.Uint64(area[0:8]); lo != 0x1000 {
		t.Errorf("address area lo = %#x, want 0x1000", lo)
	}
	if hi := binary.LittleEndian.Uint64(area[8:16]); hi != 0x1100 {
		t.Errorf("address area hi = %#x, want 0x1100", hi)
	}
	if idx := binary.LittleEndian.Uint32(area[16:20]); idx != 0 {
		t.Errorf("address area cu_index = %d, want 0", idx)
	}
}

func TestEmit_TwoCUsSharedSymbol(t *testing.T) {
	entry := &SymbolEntry{Name: []byte("foo"), Hash: HashString("foo"), Count: 2}

	cu0 := &Compunit{Offset: 0, Size: 40, NameTuples: []NameTuple{{Name: []byte("foo"), Type: 0x30}}, Entries: []*SymbolEntry{entry}}
	cu1 := &Compunit{Offset: 40, Size: 40, NameTuples: []NameTuple{{Name: []byte("foo"), Type: 0x30}}, Entries: []*SymbolEntry{entry}}
	cus := []*Compunit{cu0, cu1}
	entries := []*SymbolEntry{entry}

	l := computeLayout(cus, entries)
	buf := emit(cus, entries, l)

	cell := l.constPoolOffset + uint64(entry.TypeOffset)
	count := binary.LittleEndian.Uint32(buf[cell : cell+4])
	if count != 2 {
		t.Fatalf("count cell = %d, want 2", count)
	}

	seen := map[uint32]bool{}
	for i := uint64(0); i < 2; i++ {
		word := binary.LittleEndian.Uint32(buf[cell+4*(i+1) : cell+4*(i+1)+4])
		seen[word] = true
	}
	want := map[uint32]bool{
		(uint32(0x30) << 24) | 0: true,
		(uint32(0x30) << 24) | 1: true,
	}
	if len(seen) != len(want) {
		t.Fatalf("type/cu-index words = %v, want %v", seen, want)
	}
	for w := range want {
		if !seen[w] {
			t.Fatalf("missing expected word %#x in %v", w, seen)
		}
	}

	namePos := l.constPoolOffset + uint64(entry.NameOffset)
	if got := string(buf[namePos : namePos+3]); got != "foo" {
		t.Fatalf("name bytes = %q, want foo", got)
	}
	if buf[namePos+3] != 0 {
		t.Fatalf("expected a trailing NUL after the name")
	}

	mask := l.htSize - 1
	hash := uint64(entry.Hash)
	step := (hash & mask) | 1
	j := hash & mask
	found := false
	for i := uint64(0); i < l.htSize; i++ {
		rec := buf[l.symtabOffset+j*8:]
		nameOff := binary.LittleEndian.Uint32(rec[0:4])
		typeOff := binary.LittleEndian.Uint32(rec[4:8])
		if nameOff != 0 || typeOff != 0 {
			if nameOff == entry.NameOffset && typeOff == entry.TypeOffset {
				found = true
			}
			break
		}
		j = (j + step) & mask
	}
	if !found {
		t.Fatalf("expected to find the shared symbol's slot via the probe sequence")
	}
}

func TestNextPow2(t *testing.T) {
	cases := map[uint64]uint64{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 16: 16, 17: 32}
	for in, want := range cases {
		if got := nextPow2(in); got != want {
			t.Errorf("nextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}
