package bmp

import (
	"bytes"
	"testing"

	"github.com/paulcor/godib/dib"
	"github.com/paulcor/godib/quant"
	"github.com/paulcor/godib/rimage"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	require.True(t, Probe([]byte("BM....")))
	require.False(t, Probe([]byte("XX....")))
	require.False(t, Probe([]byte("B")))
}

func checkerImage(w, h int) *rimage.Image {
	img := rimage.Create(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 3
			if (x+y)%2 == 0 {
				img.Pix[off], img.Pix[off+1], img.Pix[off+2] = 255, 0, 0
			} else {
				img.Pix[off], img.Pix[off+1], img.Pix[off+2] = 0, 0, 255
			}
		}
	}
	return img
}

func TestEncodeDecodeRgb24RoundTrip(t *testing.T) {
	img := checkerImage(4, 3)
	var buf bytes.Buffer
	c := &Codec{}
	require.NoError(t, c.Encode(&buf, img, dib.Rgb24, nil))

	got, err := c.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, img.Width, got.Width)
	require.Equal(t, img.Height, got.Height)
	require.Equal(t, img.Pix, got.Pix)
}

func TestEncodeDecodeRgba32RoundTripPreservesAlpha(t *testing.T) {
	img := checkerImage(2, 2)
	require.NoError(t, img.SetAlpha([]byte{10, 20, 30, 40}))

	var buf bytes.Buffer
	c := &Codec{}
	require.NoError(t, c.Encode(&buf, img, dib.Rgba32, nil))

	got, err := c.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, img.Pix, got.Pix)
	require.Equal(t, []byte{10, 20, 30, 40}, got.Alpha)
}

func TestEncodeDecodePal8QuantizedRoundTrip(t *testing.T) {
	img := checkerImage(4, 4)
	var buf bytes.Buffer
	c := &Codec{}
	require.NoError(t, c.Encode(&buf, img, dib.Pal8, quant.MedianCut{}))

	got, err := c.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, img.Width, got.Width)
	// Only two distinct source colors, so quantization is lossless here.
	require.Equal(t, img.Pix, got.Pix)
}

func TestEncodeDecodePal8GivenRoundTrip(t *testing.T) {
	img := checkerImage(2, 2)
	img.Palette = dib.Palette{{R: 255, G: 0, B: 0}, {R: 0, G: 0, B: 255}}

	var buf bytes.Buffer
	c := &Codec{}
	require.NoError(t, c.Encode(&buf, img, dib.Pal8Given, nil))

	got, err := c.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, img.Pix, got.Pix)
}

func TestInspectReadsHeaderOnly(t *testing.T) {
	img := checkerImage(3, 3)
	var buf bytes.Buffer
	c := &Codec{}
	require.NoError(t, c.Encode(&buf, img, dib.Rgb24, nil))

	h, err := c.Inspect(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 3, h.Width)
	require.Equal(t, 3, h.Height)
	require.Equal(t, uint16(24), h.BitsPerPixel)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	c := &Codec{}
	_, err := c.Decode(bytes.NewReader(make([]byte, 20)))
	require.Error(t, err)
}

func TestResolutionRoundTrips(t *testing.T) {
	img := checkerImage(2, 2)
	img.SetOption(rimage.ResolutionX, 40)
	img.SetOption(rimage.ResolutionY, 40)

	var buf bytes.Buffer
	c := &Codec{}
	require.NoError(t, c.Encode(&buf, img, dib.Rgb24, nil))

	got, err := c.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 40, got.GetOptionInt(rimage.ResolutionX))
	require.Equal(t, 40, got.GetOptionInt(rimage.ResolutionY))
}
