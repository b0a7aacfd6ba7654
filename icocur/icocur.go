// Package icocur implements the ICO (Windows icon) and CUR (Windows
// cursor) container formats: a directory of entries, each either a DIB
// (decoded through package dib) or, for large frames, a PNG blob decoded
// through the standard library's image/png.
package icocur

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/paulcor/godib/byteorder"
	"github.com/paulcor/godib/dib"
	"github.com/paulcor/godib/internal/logger"
	"github.com/paulcor/godib/rimage"
	"github.com/paulcor/godib/stream"
)

// Kind distinguishes an ICO container from a CUR container; the on-disk
// directory is identical apart from this type field and the hotspot
// fields CUR entries carry.
type Kind uint16

const (
	KindICO Kind = 1
	KindCUR Kind = 2
)

const (
	dirHeaderLen  = 6
	dirEntryLen   = 16
	pngSignature  = "\x89PNG\r\n\x1a\n"
	pngSizeThresh = 128 // a frame wider or taller than this is written as PNG
)

// Codec decodes and encodes ICO/CUR files.
type Codec struct {
	Logger  *logger.Logger
	Verbose bool
}

func (c *Codec) log() *logger.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.Default()
}

func (c *Codec) fail(op string, err error) error {
	if c.Verbose {
		c.log().Errorf("icocur: %s: %v", op, err)
	}
	return err
}

// Probe reports whether b begins with a valid ICONDIR header: reserved
// u16 0, and type u16 1 (ICO) or 2 (CUR).
func Probe(b []byte) bool {
	if len(b) < 4 {
		return false
	}
	if byteorder.Uint16(b[0:2]) != 0 {
		return false
	}
	t := byteorder.Uint16(b[2:4])
	return t == uint16(KindICO) || t == uint16(KindCUR)
}

type dirEntry struct {
	width, height int // 0 in the file means 256
	colorCount    int // 0 in the file means 256, except the tie-break rule treats 0 as 255
	planes        uint16
	bitCount      uint16
	bytesInRes    uint32
	offset        uint32
}

// Decode reads one frame from an ICO/CUR file. index selects which
// directory entry to decode; -1 auto-selects per the container's own
// convention (largest width, ties broken by largest color count).
func (c *Codec) Decode(r io.Reader, index int) (*rimage.Image, error) {
	sr := stream.NewReader(r, 8192)

	var hdr [dirHeaderLen]byte
	if err := sr.ReadFull(hdr[:]); err != nil {
		return nil, c.fail("read directory header", dib.TruncatedError("ICONDIR header"))
	}
	kind := Kind(byteorder.Uint16(hdr[2:4]))
	if kind != KindICO && kind != KindCUR {
		return nil, c.fail("check type", dib.FormatError("not an ICO/CUR file"))
	}
	count := int(byteorder.Uint16(hdr[4:6]))

	entries := make([]dirEntry, count)
	for i := range entries {
		var b [dirEntryLen]byte
		if err := sr.ReadFull(b[:]); err != nil {
			return nil, c.fail("read directory entry", dib.TruncatedError("ICONDIRENTRY"))
		}
		e := dirEntry{
			width:      int(b[0]),
			height:     int(b[1]),
			colorCount: int(b[2]),
			planes:     byteorder.Uint16(b[4:6]),
			bitCount:   byteorder.Uint16(b[6:8]),
			bytesInRes: byteorder.Uint32(b[8:12]),
			offset:     byteorder.Uint32(b[12:16]),
		}
		if e.width == 0 {
			e.width = 256
		}
		if e.height == 0 {
			e.height = 256
		}
		entries[i] = e
	}
	if len(entries) == 0 {
		return nil, c.fail("select entry", dib.FormatError("empty directory"))
	}

	chosen := index
	if index < 0 {
		chosen = selectEntry(entries)
	} else if index >= len(entries) {
		return nil, c.fail("select entry", dib.FormatError("entry index out of range"))
	}
	entry := entries[chosen]

	if _, err := sr.SeekI(int64(entry.offset), io.SeekStart); err != nil {
		return nil, c.fail("seek to entry", &dib.IOError{Op: "seek to entry", Err: err})
	}

	peek, err := sr.Peek(8)
	if err != nil {
		return nil, c.fail("peek entry payload", dib.TruncatedError("entry payload"))
	}

	var img *rimage.Image
	if string(peek) == pngSignature {
		img, err = c.decodePNGEntry(sr, int(entry.bytesInRes))
	} else {
		img, err = c.decodeDIBEntry(sr, entry)
	}
	if err != nil {
		return nil, err
	}

	if kind == KindCUR {
		img.SetOption(rimage.CurHotspotX, int(entry.planes))
		img.SetOption(rimage.CurHotspotY, int(entry.bitCount))
	}
	return img, nil
}

// EntryInfo summarizes one ICONDIRENTRY for inspection tools, without
// decoding its pixel payload.
type EntryInfo struct {
	Width, Height int
	ColorCount    int
	BitCount      uint16
	BytesInRes    uint32
	Offset        uint32
	IsPNG         bool
}

// Inspect reads the directory of an ICO/CUR file and reports its kind
// and entries, without decoding any frame's pixel data.
func (c *Codec) Inspect(r io.Reader) (Kind, []EntryInfo, error) {
	sr := stream.NewReader(r, 8192)

	var hdr [dirHeaderLen]byte
	if err := sr.ReadFull(hdr[:]); err != nil {
		return 0, nil, c.fail("read directory header", dib.TruncatedError("ICONDIR header"))
	}
	kind := Kind(byteorder.Uint16(hdr[2:4]))
	if kind != KindICO && kind != KindCUR {
		return 0, nil, c.fail("check type", dib.FormatError("not an ICO/CUR file"))
	}
	count := int(byteorder.Uint16(hdr[4:6]))

	out := make([]EntryInfo, count)
	for i := range out {
		var b [dirEntryLen]byte
		if err := sr.ReadFull(b[:]); err != nil {
			return 0, nil, c.fail("read directory entry", dib.TruncatedError("ICONDIRENTRY"))
		}
		e := EntryInfo{
			Width:      int(b[0]),
			Height:     int(b[1]),
			ColorCount: int(b[2]),
			BitCount:   byteorder.Uint16(b[6:8]),
			BytesInRes: byteorder.Uint32(b[8:12]),
			Offset:     byteorder.Uint32(b[12:16]),
		}
		if e.Width == 0 {
			e.Width = 256
		}
		if e.Height == 0 {
			e.Height = 256
		}
		out[i] = e
	}

	for i := range out {
		if _, err := sr.SeekI(int64(out[i].Offset), io.SeekStart); err != nil {
			return 0, nil, c.fail("seek to entry", &dib.IOError{Op: "seek to entry", Err: err})
		}
		peek, err := sr.Peek(8)
		if err != nil {
			return 0, nil, c.fail("peek entry payload", dib.TruncatedError("entry payload"))
		}
		out[i].IsPNG = string(peek) == pngSignature
	}
	return kind, out, nil
}

// selectEntry picks the largest-width entry, ties broken by the largest
// color count (a declared count of 0 is reinterpreted as 255 for this
// comparison, per the format's own convention for full-color entries).
func selectEntry(entries []dirEntry) int {
	best := 0
	bestColors := tieColorCount(entries[0])
	for i := 1; i < len(entries); i++ {
		e := entries[i]
		cc := tieColorCount(e)
		if e.width > entries[best].width || (e.width == entries[best].width && cc >= bestColors) {
			best, bestColors = i, cc
		}
	}
	return best
}

func tieColorCount(e dirEntry) int {
	if e.colorCount == 0 {
		return 255
	}
	return e.colorCount
}

func (c *Codec) decodePNGEntry(r stream.Reader, size int) (*rimage.Image, error) {
	if size <= 0 {
		return nil, c.fail("decode PNG entry", dib.FormatError("missing PNG entry size"))
	}
	buf := make([]byte, size)
	if err := r.ReadFull(buf); err != nil {
		return nil, c.fail("read PNG entry", dib.TruncatedError("PNG entry"))
	}
	m, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, c.fail("decode PNG", dib.FormatError("invalid embedded PNG: "+err.Error()))
	}
	return imageFromStdlib(m), nil
}

func imageFromStdlib(m image.Image) *rimage.Image {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	img := rimage.Create(w, h)
	alpha := make([]byte, w*h)
	hasAlpha := false
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBAModel.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			off := (y*w + x) * 3
			img.Pix[off], img.Pix[off+1], img.Pix[off+2] = c.R, c.G, c.B
			alpha[y*w+x] = c.A
			if c.A != 0xFF {
				hasAlpha = true
			}
		}
	}
	if hasAlpha {
		img.Alpha = alpha
	}
	return img
}

func (c *Codec) decodeDIBEntry(r stream.Reader, entry dirEntry) (*rimage.Image, error) {
	h, err := dib.ParseHeader(r, true)
	if err != nil {
		return nil, c.fail("parse entry header", err)
	}
	if n := h.EffectiveNumColors(); n > 0 {
		entrySize := h.PaletteEntrySize()
		buf := make([]byte, n*entrySize)
		if err := r.ReadFull(buf); err != nil {
			return nil, c.fail("read entry palette", dib.TruncatedError("entry palette"))
		}
		pal, err := dib.ReadPalette(buf, n, entrySize)
		if err != nil {
			return nil, c.fail("decode entry palette", err)
		}
		h.Palette = pal
	}

	dec := dib.NewDecoder(h)
	decoded, err := dec.Decode(r)
	if err != nil {
		return nil, c.fail("decode entry pixels", err)
	}

	transparent, err := decodeANDMask(r, h.Width, h.Height)
	if err != nil {
		return nil, c.fail("decode AND mask", err)
	}

	img := rimage.FromDecoded(decoded)
	if !img.HasAlpha() {
		alpha := make([]byte, h.Width*h.Height)
		for i := range alpha {
			if transparent[i] {
				alpha[i] = 0
			} else {
				alpha[i] = 0xFF
			}
		}
		img.Alpha = alpha
	}
	return img, nil
}

// decodeANDMask reads the 1-bit transparency mask that follows every
// legacy ICO/CUR color plane: a set bit means the pixel is transparent.
// It is always stored bottom-up regardless of the color plane's own
// header, matching original_source's observed behavior.
func decodeANDMask(r stream.Reader, width, height int) ([]bool, error) {
	stride := dib.RowStride(width, 1)
	row := make([]byte, stride)
	transparent := make([]bool, width*height)
	for i := 0; i < height; i++ {
		if err := r.ReadFull(row); err != nil {
			return nil, dib.TruncatedError("AND mask row")
		}
		destY := height - 1 - i
		for x := 0; x < width; x++ {
			byteIdx := x / 8
			bit := 7 - uint(x%8)
			if (row[byteIdx]>>bit)&1 == 1 {
				transparent[destY*width+x] = true
			}
		}
	}
	return transparent, nil
}

// Encode writes img as a single-entry ICO/CUR file. The output pixel
// format is chosen from the image's actual color count (and forced to
// Rgba32 when alpha is present); frames wider or taller than 128px are
// serialized as PNG instead of a DIB, matching the container's own
// large-icon convention.
func (c *Codec) Encode(w io.Writer, img *rimage.Image, kind Kind, q dib.Quantizer) error {
	usePNG := img.Width > pngSizeThresh || img.Height > pngSizeThresh

	var body bytes.Buffer
	var bitCount uint16
	var colorCount int
	if usePNG {
		if err := png.Encode(&body, imageToStdlib(img)); err != nil {
			return c.fail("encode PNG entry", &dib.IOError{Op: "encode PNG entry", Err: err})
		}
		bitCount = 32
	} else {
		format := selectFormat(img)
		enc := &dib.Encoder{Format: format, Quantizer: q, PreserveAlpha: img.HasAlpha()}
		bw := stream.NewWriter(&body)
		pal, err := enc.Prepare(img)
		if err != nil {
			return c.fail("prepare entry encoder", err)
		}
		if err := dib.WriteHeaderAndPalette(bw, img.Width, img.Height, enc.BitsPerPixel(), pal, 0, 0, true); err != nil {
			return c.fail("write entry header", err)
		}
		if err := enc.Write(bw, img, pal, false); err != nil {
			return c.fail("write entry pixels", err)
		}
		if err := encodeANDMask(bw, img); err != nil {
			return c.fail("write AND mask", err)
		}
		bitCount = enc.BitsPerPixel()
		colorCount = len(pal)
	}

	cw := stream.NewWriter(w)
	var hdr [dirHeaderLen]byte
	byteorder.PutUint16(hdr[2:4], uint16(kind))
	byteorder.PutUint16(hdr[4:6], 1)
	if err := cw.WriteAll(hdr[:]); err != nil {
		return c.fail("write directory header", &dib.IOError{Op: "write directory header", Err: err})
	}

	var entry [dirEntryLen]byte
	entry[0] = byte(dimByte(img.Width))
	entry[1] = byte(dimByte(img.Height))
	if colorCount < 256 {
		entry[2] = byte(colorCount)
	}
	if kind == KindCUR {
		byteorder.PutUint16(entry[4:6], uint16(img.GetOptionInt(rimage.CurHotspotX)))
		byteorder.PutUint16(entry[6:8], uint16(img.GetOptionInt(rimage.CurHotspotY)))
	} else {
		byteorder.PutUint16(entry[4:6], 1)
		byteorder.PutUint16(entry[6:8], bitCount)
	}
	byteorder.PutUint32(entry[8:12], uint32(body.Len()))
	byteorder.PutUint32(entry[12:16], dirHeaderLen+dirEntryLen)
	if err := cw.WriteAll(entry[:]); err != nil {
		return c.fail("write directory entry", &dib.IOError{Op: "write directory entry", Err: err})
	}
	return cw.WriteAll(body.Bytes())
}

func dimByte(v int) int {
	if v >= 256 {
		return 0
	}
	return v
}

// selectFormat picks an output bit depth from the image's actual color
// count: alpha forces Rgba32, otherwise the smallest paletted depth that
// fits (falling back to Rgb24 above 256 distinct colors).
func selectFormat(img *rimage.Image) dib.Format {
	if img.HasAlpha() {
		return dib.Rgba32
	}
	n := distinctColorCount(img, 257)
	switch {
	case n <= 2:
		return dib.Pal1
	case n <= 16:
		return dib.Pal4
	case n <= 256:
		return dib.Pal8
	default:
		return dib.Rgb24
	}
}

func distinctColorCount(img *rimage.Image, cap int) int {
	w, h := img.Bounds()
	seen := make(map[[3]byte]struct{}, cap)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(x, y)
			seen[[3]byte{r, g, b}] = struct{}{}
			if len(seen) >= cap {
				return len(seen)
			}
		}
	}
	return len(seen)
}

// encodeANDMask writes the 1-bit transparency mask following the color
// plane: a set bit marks a transparent pixel (alpha == 0, or a pixel
// equal to the image's mask color when one is set).
func encodeANDMask(w stream.Writer, img *rimage.Image) error {
	width, height := img.Bounds()
	stride := dib.RowStride(width, 1)
	row := make([]byte, stride)
	for i := 0; i < height; i++ {
		y := height - 1 - i
		for j := range row {
			row[j] = 0
		}
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(x, y)
			masked := img.Mask != nil && r == img.Mask.R && g == img.Mask.G && b == img.Mask.B
			if (img.HasAlpha() && a == 0) || masked {
				byteIdx := x / 8
				bit := 7 - uint(x%8)
				row[byteIdx] |= 1 << bit
			}
		}
		if err := w.WriteAll(row); err != nil {
			return &dib.IOError{Op: "write AND mask row", Err: err}
		}
	}
	return nil
}

func imageToStdlib(img *rimage.Image) image.Image {
	w, h := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(x, y)
			dst.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
		}
	}
	return dst
}
