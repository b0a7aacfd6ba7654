package quant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func flatRGB(colors ...[3]byte) []byte {
	buf := make([]byte, 0, len(colors)*3)
	for _, c := range colors {
		buf = append(buf, c[0], c[1], c[2])
	}
	return buf
}

func TestQuantizeReturnsOnePaletteEntryPerPixelWhenRoom(t *testing.T) {
	src := flatRGB([3]byte{0, 0, 0}, [3]byte{255, 255, 255}, [3]byte{128, 128, 128})
	indices, pal, err := MedianCut{}.Quantize(src, 3, 1, 8)
	require.NoError(t, err)
	require.Len(t, indices, 3)
	// Three pixels, target room for 8: every distinct color gets its own box.
	require.Len(t, pal, 3)
	seen := map[byte]bool{}
	for _, idx := range indices {
		seen[idx] = true
	}
	require.Len(t, seen, 3)
}

func TestQuantizeCapsAtTargetN(t *testing.T) {
	colors := make([][3]byte, 0, 64)
	for i := 0; i < 64; i++ {
		colors = append(colors, [3]byte{byte(i * 4), byte(255 - i*4), byte(i)})
	}
	src := flatRGB(colors...)
	_, pal, err := MedianCut{}.Quantize(src, 64, 1, 4)
	require.NoError(t, err)
	require.LessOrEqual(t, len(pal), 4)
}

func TestQuantizeSingleColorNeverSplitsFurther(t *testing.T) {
	src := flatRGB([3]byte{7, 7, 7}, [3]byte{7, 7, 7}, [3]byte{7, 7, 7}, [3]byte{7, 7, 7})
	indices, pal, err := MedianCut{}.Quantize(src, 4, 1, 16)
	require.NoError(t, err)
	require.Len(t, pal, 1)
	for _, idx := range indices {
		require.Equal(t, byte(0), idx)
	}
	require.Equal(t, byte(7), pal[0].R)
}

func TestQuantizeDefaultsTargetWhenNonPositive(t *testing.T) {
	src := flatRGB([3]byte{1, 2, 3})
	_, pal, err := MedianCut{}.Quantize(src, 1, 1, 0)
	require.NoError(t, err)
	require.Len(t, pal, 1)
}

func TestQuantizeTruncatedSource(t *testing.T) {
	_, _, err := MedianCut{}.Quantize([]byte{1, 2}, 2, 1, 4)
	require.Error(t, err)
}
