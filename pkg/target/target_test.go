package target

import "testing"

func TestReadWord(t *testing.T) {
	amd64 := AMD64()
	if got := amd64.ReadWord([]byte{0x34, 0x12, 0, 0, 0, 0, 0, 0}); got != 0x1234 {
		t.Errorf("AMD64 ReadWord = %#x, want 0x1234", got)
	}

	i386 := I386()
	if got := i386.ReadWord([]byte{0x34, 0x12, 0, 0}); got != 0x1234 {
		t.Errorf("I386 ReadWord = %#x, want 0x1234", got)
	}
}

func TestByName(t *testing.T) {
	if _, ok := ByName("i386"); !ok {
		t.Errorf("expected i386 to resolve")
	}
	if _, ok := ByName("sparc"); ok {
		t.Errorf("expected an unsupported target name to fail")
	}
	d, ok := ByName("")
	if !ok || d.WordSize() != 8 {
		t.Errorf("expected an empty name to default to amd64")
	}
}
