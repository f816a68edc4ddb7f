package gdbindex

import "testing"

func TestHash_CaseInsensitive(t *testing.T) {
	lower := Hash([]byte("main"))
	upper := Hash([]byte("MAIN"))
	mixed := Hash([]byte("MaIn"))

	if lower != upper || lower != mixed {
		t.Fatalf("expected case-insensitive hash, got lower=%d upper=%d mixed=%d", lower, upper, mixed)
	}
}

func TestHash_DistinctNames(t *testing.T) {
	if Hash([]byte("foo")) == Hash([]byte("bar")) {
		t.Fatalf("expected distinct hashes for distinct names")
	}
}

func TestHashString_MatchesHash(t *testing.T) {
	if HashString("symbol") != Hash([]byte("symbol")) {
		t.Fatalf("HashString and Hash diverged")
	}
}
