package abbrev

import (
	"debug/dwarf"
	"reflect"
	"testing"

	"github.com/go-gdbindex/gdbindex/pkg/dwarf/cursor"
	"github.com/go-gdbindex/gdbindex/pkg/dwarf/forms"
	"github.com/go-gdbindex/gdbindex/pkg/target"
)

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		out = append(out, b)
		return out
	}
}

func TestLocate_DWARF4(t *testing.T) {
	var cuBytes []byte
	cuBytes = append(cuBytes, 0, 0, 0, 0) // abbrev offset
	cuBytes = append(cuBytes, 8)          // address size
	cuBytes = append(cuBytes, uleb(1)...) // this CU's abbrev_code

	var abbrevTable []byte
	abbrevTable = append(abbrevTable, uleb(1)...)                        // code
	abbrevTable = append(abbrevTable, uleb(uint64(dwarf.TagCompileUnit))...)
	abbrevTable = append(abbrevTable, 1) // has_children
	abbrevTable = append(abbrevTable, uleb(uint64(dwarf.AttrLowpc))...)
	abbrevTable = append(abbrevTable, uleb(uint64(forms.Addr))...)
	abbrevTable = append(abbrevTable, uleb(uint64(dwarf.AttrHighpc))...)
	abbrevTable = append(abbrevTable, uleb(uint64(forms.Data4))...)
	abbrevTable = append(abbrevTable, 0, 0) // terminator

	decls, err := Locate(cursor.At(cuBytes, 0), abbrevTable, 4, target.AMD64())
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}

	want := []Decl{
		{Attr: dwarf.AttrLowpc, Form: forms.Addr},
		{Attr: dwarf.AttrHighpc, Form: forms.Data4},
	}
	if !reflect.DeepEqual(decls, want) {
		t.Fatalf("Locate = %+v, want %+v", decls, want)
	}
}

func TestLocate_WrongTagIsFatal(t *testing.T) {
	var cuBytes []byte
	cuBytes = append(cuBytes, 0, 0, 0, 0)
	cuBytes = append(cuBytes, 8)
	cuBytes = append(cuBytes, uleb(1)...)

	var abbrevTable []byte
	abbrevTable = append(abbrevTable, uleb(1)...)
	abbrevTable = append(abbrevTable, uleb(uint64(dwarf.TagSubprogram))...)
	abbrevTable = append(abbrevTable, 0)
	abbrevTable = append(abbrevTable, 0, 0)

	if _, err := Locate(cursor.At(cuBytes, 0), abbrevTable, 4, target.AMD64()); err == nil {
		t.Fatalf("expected a fatal error for a non-CU tag")
	}
}

func TestLocate_UnsupportedAddressSizeIsFatal(t *testing.T) {
	var cuBytes []byte
	cuBytes = append(cuBytes, 0, 0, 0, 0)
	cuBytes = append(cuBytes, 4) // wrong for target.AMD64()
	cuBytes = append(cuBytes, uleb(1)...)

	if _, err := Locate(cursor.At(cuBytes, 0), nil, 4, target.AMD64()); err == nil {
		t.Fatalf("expected a fatal error for a mismatched address size")
	}
}

func TestLocate_DWARF5CompileUnit(t *testing.T) {
	var cuBytes []byte
	cuBytes = append(cuBytes, 0x01)       // unit_type: DW_UT_compile
	cuBytes = append(cuBytes, 8)          // address_size
	cuBytes = append(cuBytes, 0, 0, 0, 0) // debug_abbrev_offset
	cuBytes = append(cuBytes, uleb(1)...) // this CU's abbrev_code

	var abbrevTable []byte
	abbrevTable = append(abbrevTable, uleb(1)...)
	abbrevTable = append(abbrevTable, uleb(uint64(dwarf.TagCompileUnit))...)
	abbrevTable = append(abbrevTable, 0)
	abbrevTable = append(abbrevTable, uleb(uint64(dwarf.AttrLowpc))...)
	abbrevTable = append(abbrevTable, uleb(uint64(forms.Addr))...)
	abbrevTable = append(abbrevTable, 0, 0)

	decls, err := Locate(cursor.At(cuBytes, 0), abbrevTable, 5, target.AMD64())
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}

	want := []Decl{{Attr: dwarf.AttrLowpc, Form: forms.Addr}}
	if !reflect.DeepEqual(decls, want) {
		t.Fatalf("Locate = %+v, want %+v", decls, want)
	}
}

func TestLocate_DWARF5SkeletonUnitSkipsDWOId(t *testing.T) {
	var cuBytes []byte
	cuBytes = append(cuBytes, 0x04)                                        // unit_type: DW_UT_skeleton
	cuBytes = append(cuBytes, 8)                                           // address_size
	cuBytes = append(cuBytes, 0, 0, 0, 0)                                  // debug_abbrev_offset
	cuBytes = append(cuBytes, 1, 2, 3, 4, 5, 6, 7, 8)                      // dwo_id
	cuBytes = append(cuBytes, uleb(1)...)                                  // this CU's abbrev_code

	var abbrevTable []byte
	abbrevTable = append(abbrevTable, uleb(1)...)
	abbrevTable = append(abbrevTable, uleb(uint64(dwarf.TagSkeletonUnit))...)
	abbrevTable = append(abbrevTable, 0)
	abbrevTable = append(abbrevTable, 0, 0)

	decls, err := Locate(cursor.At(cuBytes, 0), abbrevTable, 5, target.AMD64())
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(decls) != 0 {
		t.Fatalf("expected no decls, got %+v", decls)
	}
}
