package dib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadPaletteBGROrder(t *testing.T) {
	// Two 4-byte entries: (B=1,G=2,R=3,reserved=0), (B=4,G=5,R=6,reserved=0).
	b := []byte{1, 2, 3, 0, 4, 5, 6, 0}
	pal, err := ReadPalette(b, 2, 4)
	require.NoError(t, err)
	require.Equal(t, Palette{{R: 3, G: 2, B: 1}, {R: 6, G: 5, B: 4}}, pal)
}

func TestReadPaletteTruncated(t *testing.T) {
	_, err := ReadPalette([]byte{1, 2, 3}, 2, 4)
	require.Error(t, err)
}

func TestPaletteBytesRoundTrip(t *testing.T) {
	pal := Palette{{R: 10, G: 20, B: 30}, {R: 40, G: 50, B: 60}}
	b := pal.Bytes(4)
	require.Len(t, b, 8)
	got, err := ReadPalette(b, 2, 4)
	require.NoError(t, err)
	require.Equal(t, pal, got)
}

func TestPaletteIndexNearest(t *testing.T) {
	pal := Palette{{R: 0, G: 0, B: 0}, {R: 255, G: 255, B: 255}, {R: 128, G: 128, B: 128}}
	require.Equal(t, 2, pal.Index(RGB{R: 120, G: 130, B: 125}))
	require.Equal(t, 0, pal.Index(RGB{R: 0, G: 0, B: 0}))
}
