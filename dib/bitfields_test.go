package dib

import "testing"

func TestFieldOf(t *testing.T) {
	cases := []struct {
		mask        uint32
		shift, bits uint
	}{
		{0x7C00, 10, 5},
		{0x03E0, 5, 5},
		{0x001F, 0, 5},
		{0x00FF0000, 16, 8},
		{0xFF000000, 24, 8},
		{0, 0, 0},
	}
	for _, c := range cases {
		shift, bits := fieldOf(c.mask)
		if shift != c.shift || bits != c.bits {
			t.Errorf("fieldOf(%#x) = (%d, %d), want (%d, %d)", c.mask, shift, bits, c.shift, c.bits)
		}
	}
}

func TestUpscale8(t *testing.T) {
	cases := []struct {
		c, bits uint32
		want    uint8
	}{
		{0x1F, 5, 0xFF}, // all-ones 5-bit field upscales to all-ones 8-bit
		{0, 5, 0},
		{0xFF, 8, 0xFF},
		{0x0F, 4, 0xFF},
	}
	for _, c := range cases {
		got := Upscale8(c.c, uint(c.bits))
		if got != c.want {
			t.Errorf("Upscale8(%#x, %d) = %#x, want %#x", c.c, c.bits, got, c.want)
		}
	}
}

func TestBitFieldsRGB555(t *testing.T) {
	bf := NewBitFields(defaultMask16R, defaultMask16G, defaultMask16B, 0)
	// 0x7FFF is white under XRGB1555.
	if r, g, b := bf.R(0x7FFF), bf.G(0x7FFF), bf.B(0x7FFF); r != 0xFF || g != 0xFF || b != 0xFF {
		t.Errorf("white sample = (%d, %d, %d), want (255, 255, 255)", r, g, b)
	}
	if r, g, b := bf.R(0), bf.G(0), bf.B(0); r != 0 || g != 0 || b != 0 {
		t.Errorf("black sample = (%d, %d, %d), want (0, 0, 0)", r, g, b)
	}
}

func TestBitFieldsAlphaOnlyWhenPresent(t *testing.T) {
	bf := NewBitFields(defaultMask32R, defaultMask32G, defaultMask32B, 0)
	if bf.A(0xFFFFFFFF) != 0 {
		t.Errorf("expected zero alpha width to always sample 0")
	}
	bf = NewBitFields(defaultMask32R, defaultMask32G, defaultMask32B, defaultMask32A)
	if bf.A(0xFFFFFFFF) != 0xFF {
		t.Errorf("expected full alpha mask to sample 0xFF")
	}
}
