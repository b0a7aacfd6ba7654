package dib

import (
	"github.com/paulcor/godib/byteorder"
	"github.com/paulcor/godib/stream"
)

// DecodedImage is the pixel data a Decoder produces: a flat RGB buffer
// plus an optional alpha plane, both row-major and top-down regardless of
// how the source stored its rows. Palette carries the source color table
// when the source was paletted, kept around for round-tripping even
// though every pixel has already been resolved to RGB.
type DecodedImage struct {
	Width, Height int
	Pix           []byte // len Width*Height*3
	Alpha         []byte // len Width*Height, nil unless the source qualified (see Decoder.scrubAlpha)
	Palette       Palette
}

// Decoder turns the pixel data following a Header (and its palette, if
// any) into a DecodedImage.
type Decoder struct {
	h  *Header
	bf BitFields
}

// NewDecoder builds a Decoder for h, which must already carry its
// Palette field if one was read.
func NewDecoder(h *Header) *Decoder {
	return &Decoder{h: h, bf: h.EffectiveBitFields()}
}

// RowStride returns the on-disk row length in bytes for an uncompressed
// row of width pixels at the given bit depth: rounded up to a 4-byte
// boundary.
func RowStride(width int, bpp uint16) int {
	return ((width*int(bpp) + 31) / 32) * 4
}

// Decode reads the pixel data for h from r.
func (d *Decoder) Decode(r stream.Reader) (*DecodedImage, error) {
	out := &DecodedImage{
		Width:   d.h.Width,
		Height:  d.h.Height,
		Pix:     make([]byte, d.h.Width*d.h.Height*3),
		Palette: d.h.Palette,
	}
	if d.h.BitsPerPixel == 32 && d.bf.ABits > 0 {
		out.Alpha = make([]byte, d.h.Width*d.h.Height)
	}

	var err error
	switch d.h.Compression {
	case CompRLE4:
		err = d.decodeRLE(r, out, 4)
	case CompRLE8:
		err = d.decodeRLE(r, out, 8)
	default:
		err = d.decodeUncompressed(r, out)
	}
	if err != nil {
		return nil, err
	}
	d.scrubAlpha(out)
	return out, nil
}

func (d *Decoder) decodeUncompressed(r stream.Reader, out *DecodedImage) error {
	h := d.h
	stride := RowStride(h.Width, h.BitsPerPixel)
	row := make([]byte, stride)

	for i := 0; i < h.Height; i++ {
		if err := r.ReadFull(row); err != nil {
			return TruncatedError("pixel row")
		}
		dest := i
		if !h.TopDown {
			dest = h.Height - 1 - i
		}
		if err := d.unpackRow(row, out, dest); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) unpackRow(row []byte, out *DecodedImage, destRow int) error {
	w := out.Width
	base := destRow * w
	switch d.h.BitsPerPixel {
	case 1:
		for x := 0; x < w; x++ {
			byteIdx := x / 8
			bit := 7 - uint(x%8)
			idx := (row[byteIdx] >> bit) & 1
			d.putIndexed(out, base+x, idx)
		}
	case 4:
		for x := 0; x < w; x++ {
			byteIdx := x / 2
			var idx uint8
			if x%2 == 0 {
				idx = row[byteIdx] >> 4
			} else {
				idx = row[byteIdx] & 0x0F
			}
			d.putIndexed(out, base+x, idx)
		}
	case 8:
		for x := 0; x < w; x++ {
			d.putIndexed(out, base+x, row[x])
		}
	case 16:
		for x := 0; x < w; x++ {
			v := uint32(byteorder.Uint16(row[x*2 : x*2+2]))
			d.putSample(out, base+x, v)
		}
	case 24:
		for x := 0; x < w; x++ {
			off := x * 3
			d.setPix(out, base+x, row[off+2], row[off+1], row[off+0])
		}
	case 32:
		for x := 0; x < w; x++ {
			v := byteorder.Uint32(row[x*4 : x*4+4])
			d.putSample(out, base+x, v)
		}
	default:
		return FormatError("unsupported bit depth in unpackRow")
	}
	return nil
}

// putIndexed resolves a palette index (1/4/8 bpp) to RGB and writes it.
func (d *Decoder) putIndexed(out *DecodedImage, pixelIdx int, idx uint8) {
	idx = d.clampIndex(idx)
	c := RGB{}
	if int(idx) < len(d.h.Palette) {
		c = d.h.Palette[idx]
	}
	d.setPix(out, pixelIdx, c.R, c.G, c.B)
}

// putSample resolves a raw 16/32-bit pixel value through BitFields.
func (d *Decoder) putSample(out *DecodedImage, pixelIdx int, v uint32) {
	d.setPix(out, pixelIdx, d.bf.R(v), d.bf.G(v), d.bf.B(v))
	if out.Alpha != nil {
		out.Alpha[pixelIdx] = d.bf.A(v)
	}
}

func (d *Decoder) setPix(out *DecodedImage, pixelIdx int, r, g, b uint8) {
	off := pixelIdx * 3
	out.Pix[off+0] = r
	out.Pix[off+1] = g
	out.Pix[off+2] = b
}

// clampIndex clamps a palette index read from pixel data into the
// available palette, a permissive fallback for files whose declared
// color count is smaller than the indices actually used. An index past
// the end of the palette maps to its last entry, at every paletted depth.
func (d *Decoder) clampIndex(idx uint8) uint8 {
	n := len(d.h.Palette)
	if n == 0 || int(idx) < n {
		return idx
	}
	return uint8(n - 1)
}

// scrubAlpha keeps the alpha plane only when it was worth decoding in
// the first place: a 32-bit ARGB source where at least one pixel carried
// non-zero alpha. An all-zero plane is interpreted as "no alpha was
// actually authored" and discarded so the image decodes fully opaque.
func (d *Decoder) scrubAlpha(out *DecodedImage) {
	if out.Alpha == nil {
		return
	}
	for _, a := range out.Alpha {
		if a != 0 {
			return
		}
	}
	out.Alpha = nil
}

// RLE escape codes, following the second byte of a (0, code) pair.
const (
	rleEOL   = 0
	rleEOB   = 1
	rleDelta = 2
)

func (d *Decoder) decodeRLE(r stream.Reader, out *DecodedImage, bpp int) error {
	h := d.h

	// Pre-fill with palette entry 0's color: RLE delta/EOL codes can
	// leave parts of the image unwritten, and those pixels take on
	// whatever the decoder pre-filled rather than being left undefined.
	var bg RGB
	if len(h.Palette) > 0 {
		bg = h.Palette[0]
	}
	for i := 0; i < h.Width*h.Height; i++ {
		d.setPix(out, i, bg.R, bg.G, bg.B)
	}

	x, y := 0, 0
	// rowAt(n) is the destination row for the n-th row encountered in
	// the stream, which is the bottom row of the image for the ordinary
	// bottom-up case RLE is defined against.
	rowAt := func(n int) int {
		if h.TopDown {
			return n
		}
		return h.Height - 1 - n
	}
	setPixel := func(x, y int, idx uint8) {
		if x < 0 || x >= h.Width || y < 0 || y >= h.Height {
			return
		}
		d.putIndexed(out, rowAt(y)*h.Width+x, idx)
	}

	var pair [2]byte
	for {
		if err := r.ReadFull(pair[:]); err != nil {
			return TruncatedError("RLE stream")
		}
		count, value := pair[0], pair[1]
		if count > 0 {
			if bpp == 8 {
				for i := 0; i < int(count); i++ {
					setPixel(x, y, value)
					x++
				}
			} else {
				hi, lo := value>>4, value&0x0F
				for i := 0; i < int(count); i++ {
					if i%2 == 0 {
						setPixel(x, y, hi)
					} else {
						setPixel(x, y, lo)
					}
					x++
				}
			}
			continue
		}
		switch value {
		case rleEOL:
			if x != 0 {
				x = 0
				y++
			}
		case rleEOB:
			return nil
		case rleDelta:
			var delta [2]byte
			if err := r.ReadFull(delta[:]); err != nil {
				return TruncatedError("RLE delta")
			}
			x += int(delta[0])
			y += int(delta[1])
			if x < 0 || x >= h.Width || y < 0 || y >= h.Height {
				return FormatError("RLE delta moves past image bounds")
			}
		default:
			// Absolute mode: `value` literal indices/nibbles follow,
			// padded to an even byte count.
			n := int(value)
			if bpp == 8 {
				buf := make([]byte, n)
				if err := r.ReadFull(buf); err != nil {
					return TruncatedError("RLE absolute run")
				}
				if n%2 == 1 {
					var pad [1]byte
					if err := r.ReadFull(pad[:]); err != nil {
						return TruncatedError("RLE absolute padding")
					}
				}
				for _, b := range buf {
					setPixel(x, y, b)
					x++
				}
			} else {
				nbytes := (n + 1) / 2
				buf := make([]byte, nbytes)
				if err := r.ReadFull(buf); err != nil {
					return TruncatedError("RLE absolute run")
				}
				if nbytes%2 == 1 {
					var pad [1]byte
					if err := r.ReadFull(pad[:]); err != nil {
						return TruncatedError("RLE absolute padding")
					}
				}
				for i := 0; i < n; i++ {
					b := buf[i/2]
					var idx uint8
					if i%2 == 0 {
						idx = b >> 4
					} else {
						idx = b & 0x0F
					}
					setPixel(x, y, idx)
					x++
				}
			}
		}
	}
}
