package gdbindex

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"
)

const headerSize = 24

// layout holds every section offset computed ahead of the single
// emission pass: every write below lands at an offset already known,
// so no section needs its own growable buffer.
type layout struct {
	cuListOffset    uint64
	cuTypesOffset   uint64
	rangesOffset    uint64
	symtabOffset    uint64
	constPoolOffset uint64
	htSize          uint64
	totalLength     uint64
}

// computeLayout lays out every section per the format's offset rules
// and assigns each sorted entry its NameOffset/TypeOffset within the
// constant pool.
func computeLayout(cus []*Compunit, entries []*SymbolEntry) layout {
	var numRanges int
	for _, cu := range cus {
		numRanges += len(cu.Ranges)
	}

	l := layout{cuListOffset: headerSize}
	l.cuTypesOffset = l.cuListOffset + 16*uint64(len(cus))
	l.rangesOffset = l.cuTypesOffset
	l.symtabOffset = l.rangesOffset + 20*uint64(numRanges)
	l.htSize = nextPow2(ceilDiv(uint64(len(entries))*5, 4))
	l.constPoolOffset = l.symtabOffset + 8*l.htSize

	var running uint64
	for _, e := range entries {
		e.TypeOffset = uint32(running)
		running += 4 * (uint64(e.Count) + 1)
	}
	for _, e := range entries {
		e.NameOffset = uint32(running)
		running += uint64(len(e.Name)) + 1
	}

	l.totalLength = l.constPoolOffset + running
	return l
}

func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}

func nextPow2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// emit writes every section of the computed layout into a freshly
// allocated buffer. Range extraction, CU-local sort/dedupe and symbol
// insertion have already run by this point; emit only serializes
// their results plus the hash table and constant pool.
func emit(cus []*Compunit, entries []*SymbolEntry, l layout) []byte {
	buf := make([]byte, l.totalLength)

	binary.LittleEndian.PutUint32(buf[0:4], 7)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(l.cuListOffset))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(l.cuTypesOffset))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(l.rangesOffset))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(l.symtabOffset))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(l.constPoolOffset))

	writeCUList(buf, cus, l.cuListOffset)
	writeAddressAreas(buf, cus, l.rangesOffset)
	writeSymtab(buf, entries, l.symtabOffset, l.htSize)
	writeTypeCUIndexPool(buf, cus, l.constPoolOffset)
	writeNamePool(buf, entries, l.constPoolOffset)

	return buf
}

func writeCUList(buf []byte, cus []*Compunit, off uint64) {
	for i, cu := range cus {
		rec := buf[off+uint64(i)*16:]
		binary.LittleEndian.PutUint64(rec[0:8], cu.Offset)
		binary.LittleEndian.PutUint64(rec[8:16], cu.Size)
	}
}

func writeAddressAreas(buf []byte, cus []*Compunit, off uint64) {
	pos := off
	for i, cu := range cus {
		for _, r := range cu.Ranges {
			rec := buf[pos:]
			binary.LittleEndian.PutUint64(rec[0:8], r.Low)
			binary.LittleEndian.PutUint64(rec[8:16], r.High)
			binary.LittleEndian.PutUint32(rec[16:20], uint32(i))
			pos += 20
		}
	}
}

// writeSymtab builds the open-addressed hash table with the
// double-hashing probe sequence the consumer expects: step is the
// hash masked to the table size with its low bit forced on, so every
// step is odd and therefore coprime with a power-of-two table size,
// guaranteeing the probe sequence visits every slot before repeating.
func writeSymtab(buf []byte, entries []*SymbolEntry, off, htSize uint64) {
	mask := htSize - 1
	for _, e := range entries {
		hash := uint64(e.Hash)
		step := (hash & mask) | 1
		j := hash & mask
		for {
			rec := buf[off+j*8:]
			if binary.LittleEndian.Uint32(rec[0:4]) != 0 || binary.LittleEndian.Uint32(rec[4:8]) != 0 {
				j = (j + step) & mask
				continue
			}
			binary.LittleEndian.PutUint32(rec[0:4], e.NameOffset)
			binary.LittleEndian.PutUint32(rec[4:8], e.TypeOffset)
			break
		}
	}
}

// writeTypeCUIndexPool fills every entry's type/CU-index sub-array.
// Each (CU, name tuple) pair claims the next free slot in its entry's
// sub-array with an atomic post-increment of the sub-array's leading
// count cell, so this loop stays correct if run concurrently across
// CUs; emit calls it once, from a single goroutine, CU by CU.
func writeTypeCUIndexPool(buf []byte, cus []*Compunit, constPool uint64) {
	for i, cu := range cus {
		for j, tuple := range cu.NameTuples {
			e := cu.Entries[j]
			cell := constPool + uint64(e.TypeOffset)
			idx := atomicPostIncrement(buf[cell : cell+4])
			word := (uint32(tuple.Type) << 24) | uint32(i)
			slot := buf[cell+4*(uint64(idx)+1):]
			binary.LittleEndian.PutUint32(slot[0:4], word)
		}
	}
}

func writeNamePool(buf []byte, entries []*SymbolEntry, constPool uint64) {
	for _, e := range entries {
		pos := constPool + uint64(e.NameOffset)
		copy(buf[pos:], e.Name)
		buf[pos+uint64(len(e.Name))] = 0
	}
}

// atomicPostIncrement increments the little-endian u32 at cell[0:4]
// and returns its value before the increment. cell is always 4-byte
// aligned, since every TypeOffset is a multiple of 4.
func atomicPostIncrement(cell []byte) uint32 {
	p := (*uint32)(unsafe.Pointer(&cell[0]))
	return atomic.AddUint32(p, 1) - 1
}
