package ranges

import (
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/go-gdbindex/gdbindex/pkg/target"
)

func word32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func TestReadLegacy_BaseAddressSelector(t *testing.T) {
	var data []byte
	data = append(data, word32(0x10)...)
	data = append(data, word32(0x20)...)
	data = append(data, word32(0xFFFFFFFF)...)
	data = append(data, word32(0x1000)...)
	data = append(data, word32(0x0)...)
	data = append(data, word32(0x8)...)
	data = append(data, word32(0)...)
	data = append(data, word32(0)...)

	got, err := ReadLegacy(data, 0, 0x100, target.I386())
	if err != nil {
		t.Fatalf("ReadLegacy: %v", err)
	}

	want := []Range{{Low: 0x110, High: 0x120}, {Low: 0x1000, High: 0x1008}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadLegacy = %+v, want %+v", got, want)
	}
}

func TestReadRnglist_OffsetPairUnderBaseAddressx(t *testing.T) {
	addrTable := map[uint64]uint64{2: 0x2000}
	addrx := func(idx uint64) (uint64, error) { return addrTable[idx], nil }

	data := []byte{
		rleBaseAddressx, 0x02,
		rleOffsetPair, 0x10, 0x20,
		rleEndOfList,
	}

	got, err := ReadRnglist(data, 0, addrx, 0, target.AMD64())
	if err != nil {
		t.Fatalf("ReadRnglist: %v", err)
	}

	want := []Range{{Low: 0x2010, High: 0x2020}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadRnglist = %+v, want %+v", got, want)
	}
}

func TestReadRnglist_EmptyListTerminatesImmediately(t *testing.T) {
	data := []byte{rleEndOfList}
	got, err := ReadRnglist(data, 0, nil, 0, target.AMD64())
	if err != nil {
		t.Fatalf("ReadRnglist: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no ranges, got %+v", got)
	}
}
