// Package cu enumerates DWARF compilation units in an output image's
// .debug_info section and extracts each one's covered address ranges.
// Unlike a debugger opening a single already-linked object through
// debug/dwarf.Reader, this walks the raw bytes directly, since it
// runs as a link-time pass over the final, relocated .debug_info.
package cu

import (
	"debug/dwarf"

	"github.com/go-gdbindex/gdbindex/pkg/dwarf/abbrev"
	"github.com/go-gdbindex/gdbindex/pkg/dwarf/cursor"
	"github.com/go-gdbindex/gdbindex/pkg/dwarf/forms"
	"github.com/go-gdbindex/gdbindex/pkg/dwarf/ranges"
	"github.com/go-gdbindex/gdbindex/pkg/gdbindex/fatal"
	"github.com/go-gdbindex/gdbindex/pkg/target"
)

// Header describes one compilation unit's position in .debug_info.
type Header struct {
	// Offset is the byte offset of the unit's length prefix.
	Offset int
	// Size is the total byte size, length prefix included.
	Size int
	// Version is the unit's DWARF version.
	Version uint16
}

// Enumerate scans debugInfo for consecutive unit headers. Each CU is
// a 4 byte length prefix (DWARF64's 0xFFFFFFFF marker is fatal)
// followed by length bytes of unit data whose first two bytes are the
// version.
func Enumerate(debugInfo []byte) ([]Header, error) {
	var out []Header
	off := 0
	for off < len(debugInfo) {
		c := cursor.At(debugInfo, off)
		length, err := c.U32()
		if err != nil {
			return nil, fatal.Err(fatal.UnsupportedDWARFVersion, err)
		}
		if length == 0xFFFFFFFF {
			return nil, fatal.Err(fatal.DWARF64Unsupported, nil)
		}
		version, err := c.U16()
		if err != nil {
			return nil, fatal.Err(fatal.UnsupportedDWARFVersion, err)
		}
		size := 4 + int(length)
		out = append(out, Header{Offset: off, Size: size, Version: version})
		off += size
	}
	return out, nil
}

// Sections bundles the byte slices a range extraction needs.
type Sections struct {
	DebugAbbrev   []byte
	DebugRanges   []byte
	DebugAddr     []byte
	DebugRngLists []byte
}

// Extractor resolves a CU's address ranges per the CU range
// extractor's resolution order: an explicit ranges attribute
// supersedes low_pc/high_pc; otherwise low_pc+high_pc form one range;
// otherwise the CU has none.
type Extractor struct {
	DebugInfo []byte
	Sections  Sections
	Target    target.Target
}

type attrValue struct {
	form  forms.Form
	value uint64
	seen  bool
}

// Ranges extracts and filters h's address ranges.
func (e *Extractor) Ranges(h Header) ([]ranges.Range, error) {
	cu := cursor.At(e.DebugInfo, h.Offset+6) // past length[4] + version[2]

	decls, err := abbrev.Locate(cu, e.Sections.DebugAbbrev, h.Version, e.Target)
	if err != nil {
		return nil, err
	}

	var lowPC, highPC, rngs, addrBase, rnglistsBase attrValue
	for _, d := range decls {
		v, err := forms.ReadScalar(cu, e.Target, d.Form)
		if err != nil {
			return nil, err
		}
		switch d.Attr {
		case dwarf.AttrLowpc:
			lowPC = attrValue{form: d.Form, value: v, seen: true}
		case dwarf.AttrHighpc:
			highPC = attrValue{form: d.Form, value: v, seen: true}
		case dwarf.AttrRanges:
			rngs = attrValue{form: d.Form, value: v, seen: true}
		case dwarf.AttrAddrBase:
			addrBase = attrValue{value: v, seen: true}
		case dwarf.AttrRnglistsBase:
			rnglistsBase = attrValue{value: v, seen: true}
		}
	}

	addrx := func(idx uint64) (uint64, error) {
		if !addrBase.seen {
			return 0, fatal.Err(fatal.UnhandledPCForm, nil)
		}
		off := int(addrBase.value) + int(idx)*e.Target.WordSize()
		if off < 0 || off+e.Target.WordSize() > len(e.Sections.DebugAddr) {
			return 0, fatal.Err(fatal.UnhandledPCForm, nil)
		}
		return e.Target.ReadWord(e.Sections.DebugAddr[off:]), nil
	}

	var out []ranges.Range
	switch {
	case rngs.seen:
		switch {
		case h.Version <= 4:
			out, err = ranges.ReadLegacy(e.Sections.DebugRanges, int(rngs.value), lowPC.value, e.Target)
		case rngs.form == forms.SecOffset:
			out, err = ranges.ReadRnglist(e.Sections.DebugRngLists, int(rngs.value), addrx, lowPC.value, e.Target)
		default:
			if !rnglistsBase.seen {
				return nil, fatal.Err(fatal.MissingRnglistsBase, nil)
			}
			out, err = readListOfLists(e.Sections.DebugRngLists, rnglistsBase.value, addrx, lowPC.value, e.Target)
		}
		if err != nil {
			return nil, err
		}

	case lowPC.seen && highPC.seen:
		lo, err := resolveLow(lowPC, addrx)
		if err != nil {
			return nil, err
		}
		hi, err := resolveHigh(lo, highPC, addrx)
		if err != nil {
			return nil, err
		}
		out = []ranges.Range{{Low: lo, High: hi}}
	}

	return filter(out), nil
}

func resolveLow(lowPC attrValue, addrx ranges.AddrxFunc) (uint64, error) {
	if lowPC.form == forms.Addr {
		return lowPC.value, nil
	}
	return addrx(lowPC.value)
}

func resolveHigh(lo uint64, highPC attrValue, addrx ranges.AddrxFunc) (uint64, error) {
	switch highPC.form {
	case forms.Addr:
		return highPC.value, nil
	case forms.Addrx, forms.Addrx1, forms.Addrx2, forms.Addrx3, forms.Addrx4:
		return addrx(highPC.value)
	case forms.Udata, forms.Data1, forms.Data2, forms.Data4, forms.Data8:
		return lo + highPC.value, nil
	}
	return 0, fatal.Err(fatal.UnhandledPCForm, nil)
}

func readListOfLists(debugRngLists []byte, base uint64, addrx ranges.AddrxFunc, lowPC uint64, t target.Target) ([]ranges.Range, error) {
	if base < 4 || int(base) > len(debugRngLists) {
		return nil, fatal.Err(fatal.MissingRnglistsBase, nil)
	}
	c := cursor.At(debugRngLists, int(base)-4)
	numOffsets, err := c.U32()
	if err != nil {
		return nil, fatal.Err(fatal.MissingRnglistsBase, err)
	}

	var out []ranges.Range
	for i := uint32(0); i < numOffsets; i++ {
		oc := cursor.At(debugRngLists, int(base)+int(i)*4)
		off, err := oc.U32()
		if err != nil {
			return nil, fatal.Err(fatal.MissingRnglistsBase, err)
		}
		rs, err := ranges.ReadRnglist(debugRngLists, int(off), addrx, lowPC, t)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

func filter(in []ranges.Range) []ranges.Range {
	out := in[:0]
	for _, r := range in {
		if r.Low == 0 || r.Low == r.High {
			continue
		}
		out = append(out, r)
	}
	return out
}
