// Package abbrev positions a cursor at a compilation unit's own
// declaration in the .debug_abbrev table. It intentionally does not
// build a full map[code]*Abbreviation the way
// pattyshack/bad's AbbreviationSection does for every code in a
// table — gdb-index only ever needs the single declaration that
// describes the CU DIE itself, so it walks straight to that record
// and stops.
package abbrev

import (
	"debug/dwarf"

	"github.com/go-gdbindex/gdbindex/pkg/dwarf/cursor"
	"github.com/go-gdbindex/gdbindex/pkg/dwarf/forms"
	"github.com/go-gdbindex/gdbindex/pkg/gdbindex/fatal"
	"github.com/go-gdbindex/gdbindex/pkg/target"
)

// Unit types, DWARF v5 section 7.5.1.1, table 7.3.
const (
	unitTypeCompile      = 0x01
	unitTypePartial      = 0x03
	unitTypeSkeleton     = 0x04
	unitTypeSplitCompile = 0x05
)

const implicitConst = forms.ImplicitConst

// Decl is one (attribute, form) pair from an abbreviation record.
type Decl struct {
	Attr dwarf.Attr
	Form forms.Form
}

// Locate reads the CU's version-specific unit header from cu (already
// positioned just past the 6 byte length+version prologue), then the
// CU DIE's ULEB abbrev_code, then walks abbrevTable to find the
// matching declaration. cu is left positioned at the start of the
// first attribute's value. The returned Decls are the CU DIE's own
// (attribute, form) pairs in declaration order.
func Locate(cu *cursor.Cursor, abbrevTable []byte, version uint16, t target.Target) ([]Decl, error) {
	abbrevOffset, err := readUnitHeader(cu, version, t)
	if err != nil {
		return nil, err
	}

	code, err := cu.ULEB()
	if err != nil {
		return nil, fatal.Err(fatal.MissingAbbrevDeclaration, err)
	}

	tab := cursor.At(abbrevTable, int(abbrevOffset))
	for {
		recCode, err := tab.ULEB()
		if err != nil {
			return nil, fatal.Err(fatal.MissingAbbrevDeclaration, err)
		}
		if recCode == 0 {
			return nil, fatal.Err(fatal.MissingAbbrevDeclaration, nil)
		}

		tagv, err := tab.ULEB()
		if err != nil {
			return nil, fatal.Err(fatal.MissingAbbrevDeclaration, err)
		}
		if _, err := tab.U8(); err != nil { // has_children
			return nil, fatal.Err(fatal.MissingAbbrevDeclaration, err)
		}

		decls, err := readDecls(tab)
		if err != nil {
			return nil, fatal.Err(fatal.MissingAbbrevDeclaration, err)
		}

		if recCode != code {
			continue
		}

		tag := dwarf.Tag(tagv)
		if tag != dwarf.TagCompileUnit && tag != dwarf.TagSkeletonUnit {
			return nil, fatal.Err(fatal.WrongAbbrevTag, nil)
		}
		return decls, nil
	}
}

// readDecls reads the (name, form) ULEB pairs of one abbreviation
// record, up to and including its (0,0) terminator, skipping the
// extra ULEB that follows a DW_FORM_implicit_const declaration.
func readDecls(tab *cursor.Cursor) ([]Decl, error) {
	var decls []Decl
	for {
		name, err := tab.ULEB()
		if err != nil {
			return nil, err
		}
		form, err := tab.ULEB()
		if err != nil {
			return nil, err
		}
		if name == 0 && form == 0 {
			return decls, nil
		}
		if forms.Form(form) == implicitConst {
			if _, err := tab.ULEB(); err != nil {
				return nil, err
			}
		}
		decls = append(decls, Decl{Attr: dwarf.Attr(name), Form: forms.Form(form)})
	}
}

// readUnitHeader advances cu past the version-specific portion of the
// CU header (everything after the 4 byte length and 2 byte version
// already consumed by the caller) and returns the abbrev table
// offset.
func readUnitHeader(cu *cursor.Cursor, version uint16, t target.Target) (uint32, error) {
	switch {
	case version >= 2 && version <= 4:
		abbrevOffset, err := cu.U32()
		if err != nil {
			return 0, fatal.Err(fatal.UnsupportedDWARFVersion, err)
		}
		addrSize, err := cu.U8()
		if err != nil {
			return 0, fatal.Err(fatal.UnsupportedDWARFVersion, err)
		}
		if int(addrSize) != t.WordSize() {
			return 0, fatal.Err(fatal.UnsupportedAddressSize, nil)
		}
		return abbrevOffset, nil

	case version == 5:
		unitType, err := cu.U8()
		if err != nil {
			return 0, fatal.Err(fatal.UnsupportedDWARFVersion, err)
		}
		switch unitType {
		case unitTypeCompile, unitTypePartial:
			return readV5Header(cu, t, false)
		case unitTypeSkeleton, unitTypeSplitCompile:
			return readV5Header(cu, t, true)
		default:
			return 0, fatal.Err(fatal.UnknownUnitType, nil)
		}

	default:
		return 0, fatal.Err(fatal.UnsupportedDWARFVersion, nil)
	}
}

// readV5Header reads the portion of a DWARF 5 unit header that
// follows unit_type: address_size, debug_abbrev_offset, and (for
// skeleton/split_compile units) the 8 byte dwo_id.
func readV5Header(cu *cursor.Cursor, t target.Target, hasDWOId bool) (uint32, error) {
	addrSize, err := cu.U8()
	if err != nil {
		return 0, fatal.Err(fatal.UnsupportedDWARFVersion, err)
	}
	if int(addrSize) != t.WordSize() {
		return 0, fatal.Err(fatal.UnsupportedAddressSize, nil)
	}
	abbrevOffset, err := cu.U32()
	if err != nil {
		return 0, fatal.Err(fatal.UnsupportedDWARFVersion, err)
	}
	if hasDWOId {
		if err := cu.Skip(8); err != nil {
			return 0, fatal.Err(fatal.UnsupportedDWARFVersion, err)
		}
	}
	return abbrevOffset, nil
}
