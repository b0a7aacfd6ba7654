package dib

import (
	"bytes"
	"testing"

	"github.com/paulcor/godib/byteorder"
	"github.com/paulcor/godib/stream"
	"github.com/stretchr/testify/require"
)

// buildInfoHeader builds a 40-byte BITMAPINFOHEADER.
func buildInfoHeader(width, height int32, bpp uint16, comp Compression, numColors int32) []byte {
	b := make([]byte, infoHeaderLen)
	byteorder.PutUint32(b[0:4], infoHeaderLen)
	byteorder.PutInt32(b[4:8], width)
	byteorder.PutInt32(b[8:12], height)
	byteorder.PutUint16(b[12:14], 1)
	byteorder.PutUint16(b[14:16], bpp)
	byteorder.PutUint32(b[16:20], uint32(comp))
	byteorder.PutInt32(b[20:24], 2835) // ~72ppi in pixels/meter
	byteorder.PutInt32(b[24:28], 2835)
	byteorder.PutInt32(b[28:32], numColors)
	return b
}

func TestParseHeaderInfoTopDown(t *testing.T) {
	raw := buildInfoHeader(10, -20, 24, CompRGB, 0)
	sr := stream.NewReader(bytes.NewReader(raw), 64)
	h, err := ParseHeader(sr, false)
	require.NoError(t, err)
	require.Equal(t, 10, h.Width)
	require.Equal(t, 20, h.Height)
	require.True(t, h.TopDown)
	require.Equal(t, uint16(24), h.BitsPerPixel)
}

func TestParseHeaderIconHalvesHeight(t *testing.T) {
	raw := buildInfoHeader(32, 64, 32, CompRGB, 0)
	sr := stream.NewReader(bytes.NewReader(raw), 64)
	h, err := ParseHeader(sr, true)
	require.NoError(t, err)
	require.Equal(t, 32, h.Width)
	require.Equal(t, 32, h.Height) // 64 on disk, halved
	require.False(t, h.TopDown)    // icons are always bottom-up
}

func TestParseHeaderCore(t *testing.T) {
	b := make([]byte, coreHeaderLen)
	byteorder.PutUint32(b[0:4], coreHeaderLen)
	byteorder.PutInt16(b[4:6], 16)
	byteorder.PutInt16(b[6:8], 16)
	byteorder.PutUint16(b[8:10], 1)
	byteorder.PutUint16(b[10:12], 8)
	sr := stream.NewReader(bytes.NewReader(b), 64)
	h, err := ParseHeader(sr, false)
	require.NoError(t, err)
	require.Equal(t, 16, h.Width)
	require.Equal(t, 16, h.Height)
	require.Equal(t, uint16(8), h.BitsPerPixel)
	require.Equal(t, 3, h.PaletteEntrySize())
}

func TestParseHeaderBitFields16(t *testing.T) {
	b := buildInfoHeader(4, 4, 16, CompBitFields, 0)
	var masks [12]byte
	byteorder.PutUint32(masks[0:4], 0xF800)
	byteorder.PutUint32(masks[4:8], 0x07E0)
	byteorder.PutUint32(masks[8:12], 0x001F)
	b = append(b, masks[:]...)
	sr := stream.NewReader(bytes.NewReader(b), 64)
	h, err := ParseHeader(sr, false)
	require.NoError(t, err)
	require.True(t, h.HasBitFields)
	require.Equal(t, uint32(0xF800), h.RMask)
	require.Equal(t, uint32(0x07E0), h.GMask)
	require.Equal(t, uint32(0x001F), h.BMask)
}

func TestParseHeaderRejectsBadBitDepth(t *testing.T) {
	b := buildInfoHeader(4, 4, 5, CompRGB, 0)
	sr := stream.NewReader(bytes.NewReader(b), 64)
	_, err := ParseHeader(sr, false)
	require.Error(t, err)
}

func TestParseHeaderSkipsTrailingV4Fields(t *testing.T) {
	b := make([]byte, v4InfoHeaderLen)
	byteorder.PutUint32(b[0:4], v4InfoHeaderLen)
	byteorder.PutInt32(b[4:8], 2)
	byteorder.PutInt32(b[8:12], 2)
	byteorder.PutUint16(b[12:14], 1)
	byteorder.PutUint16(b[14:16], 24)
	byteorder.PutUint32(b[16:20], uint32(CompRGB))
	sr := stream.NewReader(bytes.NewReader(b), 256)
	h, err := ParseHeader(sr, false)
	require.NoError(t, err)
	require.Equal(t, 2, h.Width)
	require.Equal(t, uint32(v4InfoHeaderLen), h.HeaderSize)
}

func TestWriteHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	cw := stream.NewWriter(&buf)
	require.NoError(t, WriteHeader(cw, 8, 8, 24, 0, 28, 28, false))
	sr := stream.NewReader(bytes.NewReader(buf.Bytes()), 64)
	h, err := ParseHeader(sr, false)
	require.NoError(t, err)
	require.Equal(t, 8, h.Width)
	require.Equal(t, 8, h.Height)
	require.False(t, h.TopDown)
	require.Equal(t, 28, h.ResX)
	require.Equal(t, 28, h.ResY)
}

func TestWriteHeader32bppStandaloneCarriesExplicitAlphaMask(t *testing.T) {
	var buf bytes.Buffer
	cw := stream.NewWriter(&buf)
	require.NoError(t, WriteHeader(cw, 4, 4, 32, 0, 0, 0, false))
	require.Equal(t, bitFieldsHeaderLen, int(HeaderLen(32, false)))
	require.Equal(t, bitFieldsHeaderLen, buf.Len())

	sr := stream.NewReader(bytes.NewReader(buf.Bytes()), 256)
	h, err := ParseHeader(sr, false)
	require.NoError(t, err)
	require.True(t, h.HasBitFields)
	require.Equal(t, uint32(defaultMask32A), h.AMask)
	require.True(t, h.HasAlphaChannel())
}

func TestWriteHeader32bppIconOmitsExplicitMasks(t *testing.T) {
	var buf bytes.Buffer
	cw := stream.NewWriter(&buf)
	require.NoError(t, WriteHeader(cw, 4, 4, 32, 0, 0, 0, true))
	require.Equal(t, infoHeaderLen, buf.Len())
}

func TestResolutionPPCM(t *testing.T) {
	require.Equal(t, 28, ResolutionPPCM(0, false, false)) // default 72ppi -> ~28 px/cm
	require.Equal(t, 40, ResolutionPPCM(40, true, true))
	require.Equal(t, 39, ResolutionPPCM(100, true, false))
}

func TestEffectiveBitFieldsDefaultsAndAlphaGating(t *testing.T) {
	h := &Header{BitsPerPixel: 32}
	bf := h.EffectiveBitFields()
	require.Equal(t, uint(16), bf.RShift)
	require.Equal(t, uint(8), bf.RBits)
	require.Equal(t, uint(0), bf.ABits, "non-icon 32bpp with no explicit masks has no alpha")

	h = &Header{BitsPerPixel: 32, IsIcon: true}
	bf = h.EffectiveBitFields()
	require.Equal(t, uint(8), bf.ABits, "icon 32bpp defaults to ARGB with alpha")

	h = &Header{BitsPerPixel: 32, HasBitFields: true, RMask: 0x000000FF, GMask: 0x0000FF00, BMask: 0x00FF0000}
	bf = h.EffectiveBitFields()
	require.Equal(t, uint(0), bf.ABits, "a non-canonical channel layout never gets alpha even with AMask unset")
}
