// Package target describes the word size and byte order of the
// architecture a linked output image was built for, so the rest of
// the pipeline can decode address-typed DWARF scalars without
// hardcoding binary.LittleEndian or a fixed pointer width.
package target

import "encoding/binary"

// Target carries the address width and byte order of the linked
// output. Non-native address sizes are not supported: a Target is
// always one of the constructors below.
type Target struct {
	wordSize  int
	byteOrder binary.ByteOrder
}

// AMD64 is the x86-64 target: 8 byte little-endian addresses.
func AMD64() Target { return Target{wordSize: 8, byteOrder: binary.LittleEndian} }

// I386 is the x86 target: 4 byte little-endian addresses.
func I386() Target { return Target{wordSize: 4, byteOrder: binary.LittleEndian} }

// WordSize returns the address size in bytes.
func (t Target) WordSize() int { return t.wordSize }

// ByteOrder returns the byte order used to decode addr-typed scalars.
func (t Target) ByteOrder() binary.ByteOrder { return t.byteOrder }

// ReadWord decodes a single word-sized value from the front of b.
func (t Target) ReadWord(b []byte) uint64 {
	switch t.wordSize {
	case 4:
		return uint64(t.byteOrder.Uint32(b))
	case 8:
		return t.byteOrder.Uint64(b)
	}
	panic("unsupported word size")
}

// ByName resolves a target by the configuration name used in
// gdbindex.yml ("amd64" or "i386"). It is the only place a string
// name is translated into a Target.
func ByName(name string) (Target, bool) {
	switch name {
	case "", "amd64":
		return AMD64(), true
	case "i386":
		return I386(), true
	}
	return Target{}, false
}
