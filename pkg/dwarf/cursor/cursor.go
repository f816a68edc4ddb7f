// Package cursor provides buffered, position-aware decoding of raw
// DWARF byte streams, exposing the absolute byte offset callers need
// to compute pointers into the abbreviation table and to report a
// CU's own byte offset.
package cursor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/go-gdbindex/gdbindex/pkg/dwarf/leb128"
	"github.com/go-gdbindex/gdbindex/pkg/target"
)

// ErrUnderflow is returned whenever a read runs past the end of the
// underlying byte slice.
var ErrUnderflow = errors.New("cursor: underflow")

// Cursor reads sequentially through a byte slice, tracking its
// absolute position so callers can capture and restore pointers.
type Cursor struct {
	data []byte
	r    *bytes.Reader
}

// New returns a cursor positioned at the start of data.
func New(data []byte) *Cursor {
	return &Cursor{data: data, r: bytes.NewReader(data)}
}

// At returns a cursor over data positioned at byte offset pos.
func At(data []byte, pos int) *Cursor {
	c := New(data)
	c.Seek(pos)
	return c
}

// Pos returns the current absolute byte offset.
func (c *Cursor) Pos() int { return len(c.data) - c.r.Len() }

// Seek moves the cursor to an absolute byte offset.
func (c *Cursor) Seek(pos int) { c.r.Seek(int64(pos), io.SeekStart) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return c.r.Len() }

// ULEB reads a ULEB128-encoded unsigned integer.
func (c *Cursor) ULEB() (uint64, error) {
	// leb128.DecodeUnsigned panics on a value cut off by the end of the
	// data, so make sure the value's final byte is present first.
	for i := c.Pos(); ; i++ {
		if i >= len(c.data) {
			return 0, ErrUnderflow
		}
		if c.data[i]&0x80 == 0 {
			break
		}
	}
	v, _ := leb128.DecodeUnsigned(c.r)
	return v, nil
}

// U8 reads one byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.r.ReadByte()
	if err != nil {
		return 0, ErrUnderflow
	}
	return b, nil
}

// U16 reads a little-endian 16 bit value.
func (c *Cursor) U16() (uint16, error) {
	var v uint16
	if err := binary.Read(c.r, binary.LittleEndian, &v); err != nil {
		return 0, ErrUnderflow
	}
	return v, nil
}

// U24 reads a little-endian 24 bit value, zero-extended to 32 bits.
func (c *Cursor) U24() (uint32, error) {
	b, err := c.Bytes(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// U32 reads a little-endian 32 bit value.
func (c *Cursor) U32() (uint32, error) {
	var v uint32
	if err := binary.Read(c.r, binary.LittleEndian, &v); err != nil {
		return 0, ErrUnderflow
	}
	return v, nil
}

// U64 reads a little-endian 64 bit value.
func (c *Cursor) U64() (uint64, error) {
	var v uint64
	if err := binary.Read(c.r, binary.LittleEndian, &v); err != nil {
		return 0, ErrUnderflow
	}
	return v, nil
}

// Word reads a single target-word-sized little-endian value.
func (c *Cursor) Word(t target.Target) (uint64, error) {
	b, err := c.Bytes(t.WordSize())
	if err != nil {
		return 0, err
	}
	return t.ReadWord(b), nil
}

// Bytes reads n raw bytes.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(c.r, b); err != nil {
		return nil, ErrUnderflow
	}
	return b, nil
}

// Skip advances the cursor by n bytes without returning them.
func (c *Cursor) Skip(n int) error {
	_, err := c.Bytes(n)
	return err
}

// CString reads a NUL-terminated string, discarding the terminator.
func (c *Cursor) CString() (string, error) {
	start := c.Pos()
	for {
		b, err := c.r.ReadByte()
		if err != nil {
			return "", ErrUnderflow
		}
		if b == 0 {
			return string(c.data[start : c.Pos()-1]), nil
		}
	}
}
