package gdbindex

import "github.com/go-gdbindex/gdbindex/pkg/gdbindex/fatal"

// FatalError and FatalKind are the public names for pkg/gdbindex/fatal's
// conditions (that package exists separately so pkg/dwarf/* can raise
// these without importing this one).
type FatalError = fatal.Error
type FatalKind = fatal.Kind

const (
	UnsupportedDWARFVersion   = fatal.UnsupportedDWARFVersion
	UnsupportedAddressSize    = fatal.UnsupportedAddressSize
	UnknownUnitType           = fatal.UnknownUnitType
	MissingAbbrevDeclaration  = fatal.MissingAbbrevDeclaration
	WrongAbbrevTag            = fatal.WrongAbbrevTag
	UnhandledForm             = fatal.UnhandledForm
	UnhandledPCForm           = fatal.UnhandledPCForm
	MissingRnglistsBase       = fatal.MissingRnglistsBase
	CorruptPubnamesHeader     = fatal.CorruptPubnamesHeader
	UnresolvedDebugInfoOffset = fatal.UnresolvedDebugInfoOffset
	DWARF64Unsupported        = fatal.DWARF64Unsupported
)
