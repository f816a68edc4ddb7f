package gdbindex

// Hash computes the gdb-index name hash: ASCII letters are folded to
// lowercase, then folded into a 32 bit running product. This is the
// same hash gdb itself uses to place a name in the on-disk symbol
// table, so a consumer must be able to recompute it from the stored
// string and land on the same slot (see the symbol-table probe
// sequence in layout.go).
func Hash(name []byte) uint32 {
	var h uint32
	for _, b := range name {
		if b >= 'A' && b <= 'Z' {
			b += 32
		}
		h = h*67 + uint32(b) - 113
	}
	return h
}

// HashString is Hash over a string, for callers that haven't already
// converted a name to bytes.
func HashString(name string) uint32 {
	return Hash([]byte(name))
}
