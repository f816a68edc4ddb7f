// Package pubnames parses the table format shared by
// .debug_gnu_pubnames and .debug_gnu_pubtypes: a sequence of
// per-CU tables, each a 14 byte header followed by
// (offset, type, name) records. It knows nothing about CUs or
// symbol tables; pkg/gdbindex resolves each table's DebugInfoOffset to
// a CU and does the hashing and deduplication.
package pubnames

import (
	"github.com/go-gdbindex/gdbindex/pkg/dwarf/cursor"
	"github.com/go-gdbindex/gdbindex/pkg/gdbindex/fatal"
)

// Record is one public name/type entry.
type Record struct {
	Name []byte
	Type byte
}

// Table holds the records contributed for a single compilation unit.
type Table struct {
	// DebugInfoOffset is the offset, relative to the start of the
	// contributing object's own .debug_info contribution, of the CU
	// this table describes.
	DebugInfoOffset uint64
	Records         []Record
}

const headerSize = 14

// Parse reads every table in data.
func Parse(data []byte) ([]Table, error) {
	var tables []Table
	off := 0
	for off < len(data) {
		if len(data)-off < headerSize {
			return nil, fatal.Err(fatal.CorruptPubnamesHeader, nil)
		}

		h := cursor.At(data, off)
		length, err := h.U32()
		if err != nil {
			return nil, fatal.Err(fatal.CorruptPubnamesHeader, err)
		}
		h.Seek(off + 6)
		diOffset, err := h.U32()
		if err != nil {
			return nil, fatal.Err(fatal.CorruptPubnamesHeader, err)
		}

		total := 4 + int(length)
		bodyStart := off + headerSize
		bodyEnd := off + total
		if total < headerSize || bodyEnd > len(data) {
			return nil, fatal.Err(fatal.CorruptPubnamesHeader, nil)
		}

		records, err := parseRecords(data[bodyStart:bodyEnd])
		if err != nil {
			return nil, err
		}
		tables = append(tables, Table{DebugInfoOffset: uint64(diOffset), Records: records})
		off = bodyEnd
	}
	return tables, nil
}

func parseRecords(body []byte) ([]Record, error) {
	c := cursor.At(body, 0)
	var out []Record
	for c.Remaining() > 0 {
		offset, err := c.U32()
		if err != nil {
			return nil, fatal.Err(fatal.CorruptPubnamesHeader, err)
		}
		if offset == 0 {
			return out, nil
		}
		typeByte, err := c.U8()
		if err != nil {
			return nil, fatal.Err(fatal.CorruptPubnamesHeader, err)
		}
		name, err := c.CString()
		if err != nil {
			return nil, fatal.Err(fatal.CorruptPubnamesHeader, err)
		}
		out = append(out, Record{Name: []byte(name), Type: typeByte})
	}
	return out, nil
}
