package websocket

import (
	"bytes"
	"testing"
)

func TestMaskSliceIsItsOwnInverse(t *testing.T) {
	m := Mask{0x12, 0x34, 0x56, 0x78}
	original := []byte("the quick brown fox jumps over the lazy dog, 13 bytes extra")
	buf := append([]byte(nil), original...)

	MaskSlice(buf, m)
	if bytes.Equal(buf, original) {
		t.Fatal("MaskSlice() did not change the buffer")
	}

	MaskSlice(buf, m)
	if !bytes.Equal(buf, original) {
		t.Errorf("MaskSlice() applied twice = %v, want %v", buf, original)
	}
}

func TestMaskSliceEmpty(t *testing.T) {
	var buf []byte
	MaskSlice(buf, Mask{1, 2, 3, 4}) // Must not panic.
}

func TestMaskSliceCopyMatchesInPlace(t *testing.T) {
	m := Mask{0xaa, 0xbb, 0xcc, 0xdd}
	src := []byte("abcdefghij") // 10 bytes: exercises the 8-byte word path and the scalar remainder.

	inPlace := append([]byte(nil), src...)
	MaskSlice(inPlace, m)

	dst := make([]byte, len(src))
	MaskSliceCopy(dst, src, m)

	if !bytes.Equal(dst, inPlace) {
		t.Errorf("MaskSliceCopy() = %v, want %v", dst, inPlace)
	}
	if !bytes.Equal(src, []byte("abcdefghij")) {
		t.Error("MaskSliceCopy() mutated src")
	}
}

func TestNewMaskIsRandom(t *testing.T) {
	m1, err := NewMask()
	if err != nil {
		t.Fatalf("NewMask() error = %v", err)
	}
	m2, err := NewMask()
	if err != nil {
		t.Fatalf("NewMask() error = %v", err)
	}
	if m1 == m2 {
		t.Error("NewMask() produced the same key twice in a row (extremely unlikely)")
	}
}
