// Package forms enumerates the DWARF v5 attribute form codes and
// provides the fixed dispatch table that reads exactly the right
// number of bytes for the forms the gdb_index builder handles; any
// other form is a fatal error. debug/dwarf keeps its own form codes
// unexported, so this package carries its own copy of them.
package forms

import (
	"github.com/go-gdbindex/gdbindex/pkg/dwarf/cursor"
	"github.com/go-gdbindex/gdbindex/pkg/gdbindex/fatal"
	"github.com/go-gdbindex/gdbindex/pkg/target"
)

// Form is a DWARF attribute form code, see DWARF v5 section 7.5.6, table 7.6.
type Form uint64

const (
	Addr          Form = 0x01
	Block2        Form = 0x03
	Block4        Form = 0x04
	Data2         Form = 0x05
	Data4         Form = 0x06
	Data8         Form = 0x07
	String        Form = 0x08
	Block         Form = 0x09
	Block1        Form = 0x0a
	Data1         Form = 0x0b
	Flag          Form = 0x0c
	Sdata         Form = 0x0d
	Strp          Form = 0x0e
	Udata         Form = 0x0f
	RefAddr       Form = 0x10
	Ref1          Form = 0x11
	Ref2          Form = 0x12
	Ref4          Form = 0x13
	Ref8          Form = 0x14
	RefUdata      Form = 0x15
	Indirect      Form = 0x16
	SecOffset     Form = 0x17
	Exprloc       Form = 0x18
	FlagPresent   Form = 0x19
	Strx          Form = 0x1a
	Addrx         Form = 0x1b
	RefSup4       Form = 0x1c
	StrpSup       Form = 0x1d
	Data16        Form = 0x1e
	LineStrp      Form = 0x1f
	RefSig8       Form = 0x20
	ImplicitConst Form = 0x21
	Loclistx      Form = 0x22
	Rnglistx      Form = 0x23
	RefSup8       Form = 0x24
	Strx1         Form = 0x25
	Strx2         Form = 0x26
	Strx3         Form = 0x27
	Strx4         Form = 0x28
	Addrx1        Form = 0x29
	Addrx2        Form = 0x2a
	Addrx3        Form = 0x2b
	Addrx4        Form = 0x2c
)

// ReadScalar consumes exactly the bytes belonging to form from c and
// returns its value. For forms without a useful scalar value
// (flag_present, string) it returns 0; callers that need the string
// itself read it themselves before or instead of calling ReadScalar.
func ReadScalar(c *cursor.Cursor, t target.Target, form Form) (uint64, error) {
	switch form {
	case FlagPresent:
		return 0, nil
	case Data1, Flag, Strx1, Addrx1, Ref1:
		v, err := c.U8()
		return uint64(v), err
	case Data2, Strx2, Addrx2, Ref2:
		v, err := c.U16()
		return uint64(v), err
	case Strx3, Addrx3:
		v, err := c.U24()
		return uint64(v), err
	case Data4, Strp, SecOffset, LineStrp, Strx4, Addrx4, Ref4:
		v, err := c.U32()
		return uint64(v), err
	case Data8, Ref8:
		return c.U64()
	case Addr, RefAddr:
		return c.Word(t)
	case Strx, Addrx, Udata, RefUdata, Loclistx, Rnglistx:
		return c.ULEB()
	case String:
		if _, err := c.CString(); err != nil {
			return 0, err
		}
		return 0, nil
	default:
		return 0, fatal.Err(fatal.UnhandledForm, nil)
	}
}
