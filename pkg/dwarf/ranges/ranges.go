// Package ranges decodes DWARF address range lists: the legacy
// .debug_ranges encoding used through DWARF 4, and the DWARF 5
// .debug_rnglists stream, including its addrx indirection. Compare
// aclements/go-obj's dbg.addRanges, which asks debug/dwarf to do the
// equivalent decoding for it — gdb-index needs the raw bytes itself
// because it runs over the linker's own relocated sections, not a
// debug/dwarf.Data built from a single object file.
package ranges

import (
	"github.com/go-gdbindex/gdbindex/pkg/dwarf/cursor"
	"github.com/go-gdbindex/gdbindex/pkg/gdbindex/fatal"
	"github.com/go-gdbindex/gdbindex/pkg/target"
)

// Range is a half-open [Low, High) address interval.
type Range struct {
	Low, High uint64
}

// AddrxFunc resolves an index into the CU's .debug_addr subsection.
type AddrxFunc func(idx uint64) (uint64, error)

// ReadLegacy decodes a .debug_ranges list starting at offset pos in
// data, with an initial base address, per DWARF <=4 semantics: the
// list ends at two all-zero words; an entry whose low word is all-ones
// sets the running base instead of emitting a range.
func ReadLegacy(data []byte, pos int, base uint64, t target.Target) ([]Range, error) {
	c := cursor.At(data, pos)
	wordMax := maxWord(t)

	var out []Range
	for {
		lo, err := c.Word(t)
		if err != nil {
			return nil, fatal.Err(fatal.UnhandledPCForm, err)
		}
		hi, err := c.Word(t)
		if err != nil {
			return nil, fatal.Err(fatal.UnhandledPCForm, err)
		}
		if lo == 0 && hi == 0 {
			return out, nil
		}
		if lo == wordMax {
			base = hi
			continue
		}
		out = append(out, Range{Low: lo + base, High: hi + base})
	}
}

// Range-list entry kinds, DWARF v5 section 7.28, table 7.30.
const (
	rleEndOfList    = 0x00
	rleBaseAddressx = 0x01
	rleStartxEndx   = 0x02
	rleStartxLength = 0x03
	rleOffsetPair   = 0x04
	rleBaseAddress  = 0x05
	rleStartEnd     = 0x06
	rleStartLength  = 0x07
)

// ReadRnglist decodes a single DWARF 5 .debug_rnglists list starting
// at offset pos in data.
func ReadRnglist(data []byte, pos int, addrx AddrxFunc, base uint64, t target.Target) ([]Range, error) {
	c := cursor.At(data, pos)

	var out []Range
	for {
		kind, err := c.U8()
		if err != nil {
			return nil, fatal.Err(fatal.UnhandledPCForm, err)
		}
		switch kind {
		case rleEndOfList:
			return out, nil

		case rleBaseAddressx:
			i, err := c.ULEB()
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			base, err = addrx(i)
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}

		case rleStartxEndx:
			i, err := c.ULEB()
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			j, err := c.ULEB()
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			lo, err := addrx(i)
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			hi, err := addrx(j)
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			out = append(out, Range{Low: lo, High: hi})

		case rleStartxLength:
			i, err := c.ULEB()
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			n, err := c.ULEB()
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			lo, err := addrx(i)
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			out = append(out, Range{Low: lo, High: lo + n})

		case rleOffsetPair:
			a, err := c.ULEB()
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			b, err := c.ULEB()
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			out = append(out, Range{Low: base + a, High: base + b})

		case rleBaseAddress:
			v, err := c.Word(t)
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			base = v

		case rleStartEnd:
			a, err := c.Word(t)
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			b, err := c.Word(t)
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			out = append(out, Range{Low: a, High: b})

		case rleStartLength:
			a, err := c.Word(t)
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			n, err := c.ULEB()
			if err != nil {
				return nil, fatal.Err(fatal.UnhandledPCForm, err)
			}
			out = append(out, Range{Low: a, High: a + n})

		default:
			return nil, fatal.Err(fatal.UnhandledPCForm, nil)
		}
	}
}

func maxWord(t target.Target) uint64 {
	if t.WordSize() >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << (8 * t.WordSize())) - 1
}
