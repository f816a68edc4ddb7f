package gdbindex

import (
	"bytes"
	"compress/zlib"
	"io"
)

// OutputSections holds the decompressed bytes of the final linked
// image's DWARF sections that the range extractor and abbreviation
// reader need. Struct fields are tagged by the ELF section-name
// suffix they come from; the tag is informational only, since the
// CLI populates this struct from a plain directory layout rather
// than an ELF file.
type OutputSections struct {
	DebugInfo     []byte `section:"debug_info"`
	DebugAbbrev   []byte `section:"debug_abbrev"`
	DebugRanges   []byte `section:"debug_ranges"`
	DebugAddr     []byte `section:"debug_addr"`
	DebugRngLists []byte `section:"debug_rnglists"`
}

// InputObject is one input object's contribution: its raw (possibly
// zlib-compressed, per the GNU "--compress-debug-sections" convention)
// public-names/public-types sections, and the offset at which its own
// .debug_info contribution begins in the combined output section.
type InputObject struct {
	// Identity names the object for cache-key and diagnostic purposes
	// (e.g. its path); it carries no other meaning to this package.
	Identity string

	RawPubnames []byte
	RawPubtypes []byte

	DebugInfoContributionOffset uint64

	cache *pubnamesCache
}

// DecompressedPubnames returns o's .debug_gnu_pubnames bytes,
// decompressing and caching them on first use.
func (o *InputObject) DecompressedPubnames() ([]byte, error) {
	return o.decompressed('n', o.RawPubnames)
}

// DecompressedPubtypes returns o's .debug_gnu_pubtypes bytes,
// decompressing and caching them on first use.
func (o *InputObject) DecompressedPubtypes() ([]byte, error) {
	return o.decompressed('t', o.RawPubtypes)
}

func (o *InputObject) decompressed(kind byte, raw []byte) ([]byte, error) {
	if o.cache == nil || len(raw) == 0 {
		return decompressIfNeeded(raw)
	}
	key := pubnamesCacheKey{object: o.Identity, kind: kind}
	if v, ok := o.cache.get(key); ok {
		return v, nil
	}
	v, err := decompressIfNeeded(raw)
	if err != nil {
		return nil, err
	}
	o.cache.put(key, v)
	return v, nil
}

// zlibMagic is the two-byte header of a zlib stream with the default
// compression level, which is what GNU "--compress-debug-sections"
// producers emit.
var zlibMagic = [2]byte{0x78, 0x9c}

func decompressIfNeeded(raw []byte) ([]byte, error) {
	if len(raw) < 2 || raw[0] != zlibMagic[0] || raw[1] != zlibMagic[1] {
		return raw, nil
	}
	r, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return raw, nil
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return out, nil
}
