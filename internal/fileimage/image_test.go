package fileimage

import "testing"

func TestWrapAndLen(t *testing.T) {
	img := Wrap([]byte{1, 2, 3, 4})
	if img.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", img.Len())
	}
}

func TestValidBounds(t *testing.T) {
	img := Wrap(make([]byte, 10))
	cases := []struct {
		off, n int
		want   bool
	}{
		{0, 10, true},
		{0, 11, false},
		{9, 1, true},
		{10, 0, true},
		{10, 1, false},
		{-1, 1, false},
		{0, -1, false},
	}
	for _, c := range cases {
		if got := img.Valid(c.off, c.n); got != c.want {
			t.Errorf("Valid(%d,%d) = %v, want %v", c.off, c.n, got, c.want)
		}
	}
}

func TestSliceOutOfBounds(t *testing.T) {
	img := Wrap(make([]byte, 4))
	if _, err := img.Slice(2, 3); err == nil {
		t.Fatalf("Slice(2,3) on a 4-byte image should fail")
	}
}

func TestBigEndianAccessors(t *testing.T) {
	buf := []byte{0x00, 0x10, 0x00, 0x00, 0x00, 0x1C, 0x12, 0x34, 0x56, 0x78}
	img := Wrap(buf)

	b, err := img.ByteAt(0)
	if err != nil || b != 0x00 {
		t.Fatalf("ByteAt(0) = (%d, %v)", b, err)
	}

	u16, err := img.Uint16BE(0)
	if err != nil || u16 != 0x0010 {
		t.Fatalf("Uint16BE(0) = (%d, %v), want 0x0010", u16, err)
	}

	u32, err := img.Uint32BE(2)
	if err != nil || u32 != 0x0000001C {
		t.Fatalf("Uint32BE(2) = (%d, %v), want 0x1C", u32, err)
	}

	u64, err := img.Uint64BE(2)
	if err != nil || u64 != 0x0000001C12345678 {
		t.Fatalf("Uint64BE(2) = (%#x, %v)", u64, err)
	}
}

func TestAccessorsOutOfBounds(t *testing.T) {
	img := Wrap(make([]byte, 1))
	if _, err := img.Uint16BE(0); err == nil {
		t.Fatalf("Uint16BE should fail reading past a 1-byte image")
	}
	if _, err := img.Uint32BE(0); err == nil {
		t.Fatalf("Uint32BE should fail reading past a 1-byte image")
	}
}
