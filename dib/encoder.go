package dib

import (
	"github.com/paulcor/godib/stream"
)

// PixelSource is the minimal read side of an image the Encoder needs:
// dimensions and a per-pixel RGBA getter, straight 8-bit-per-channel.
type PixelSource interface {
	Bounds() (w, h int)
	At(x, y int) (r, g, b, a uint8)
}

// Quantizer reduces a flat w*h*3 RGB buffer to at most targetN colors,
// returning a palette index per pixel. The concrete implementation
// (quant.MedianCut) lives outside this package to keep dib free of a
// dependency on quant's own dependency on dib.Palette.
type Quantizer interface {
	Quantize(src []byte, w, h, targetN int) (indices []byte, pal Palette, err error)
}

// Format selects one of the encoder's output pixel layouts.
type Format int

const (
	Rgb24 Format = iota
	Rgba32
	Pal1      // 1 bpp, palette quantized to 2 colors
	Pal1BW    // 1 bpp, fixed black/white palette, thresholded on the red channel
	Pal4      // 4 bpp, palette quantized to 16 colors
	Pal8      // 8 bpp, palette quantized to up to pal8ColorCap colors
	Pal8Given // 8 bpp, caller-supplied palette, nearest-color mapped
	Pal8Grey  // 8 bpp, fixed 256-entry greyscale ramp
	Pal8Red   // 8 bpp, fixed 256-entry greyscale ramp indexed by the red channel
)

// pal8ColorCap is the quantizer target Pal8 requests, short of the full
// 256 an 8-bit palette could hold. See DESIGN.md for why this cap exists.
const pal8ColorCap = 236

// Encoder writes pixel data (and, for paletted formats, derives the
// palette) for one Format. Pal8Given requires GivenPalette; Pal1/Pal4/
// Pal8 require Quantizer. Pal8Grey and Pal8Red need neither: both are
// fixed 256-entry ramps.
type Encoder struct {
	Format       Format
	GivenPalette Palette
	Quantizer    Quantizer
	// PreserveAlpha, when true, keeps the source alpha channel on Rgba32
	// output instead of forcing it fully opaque. Set for ICO/CUR 32-bit
	// frames, and for BMP encodes where the caller wants alpha kept.
	PreserveAlpha bool

	quantIndices []byte // set by Prepare for Pal1/Pal4/Pal8; row-major top-down, parallel to src iteration
}

// BitsPerPixel returns the on-disk bit depth for e.Format.
func (e *Encoder) BitsPerPixel() uint16 {
	switch e.Format {
	case Rgb24:
		return 24
	case Rgba32:
		return 32
	case Pal1, Pal1BW:
		return 1
	case Pal4:
		return 4
	default:
		return 8
	}
}

// Prepare builds the palette (if any) this encoder will emit, by
// quantizing or otherwise deriving colors from src. It returns nil for
// Rgb24/Rgba32.
func (e *Encoder) Prepare(src PixelSource) (Palette, error) {
	switch e.Format {
	case Rgb24, Rgba32:
		return nil, nil
	case Pal1BW:
		return Palette{{R: 0, G: 0, B: 0}, {R: 255, G: 255, B: 255}}, nil
	case Pal8Grey, Pal8Red:
		pal := make(Palette, 256)
		for i := range pal {
			pal[i] = RGB{R: uint8(i), G: uint8(i), B: uint8(i)}
		}
		return pal, nil
	case Pal8Given:
		if len(e.GivenPalette) == 0 {
			return nil, ErrMissingPalette
		}
		return e.GivenPalette, nil
	case Pal1, Pal4, Pal8:
		if e.Quantizer == nil {
			return nil, FormatError("no quantizer configured for " + e.formatName())
		}
		w, h := src.Bounds()
		buf := make([]byte, w*h*3)
		i := 0
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, b, _ := src.At(x, y)
				buf[i+0], buf[i+1], buf[i+2] = r, g, b
				i += 3
			}
		}
		targetN := 1 << e.BitsPerPixel()
		if e.Format == Pal8 && targetN > pal8ColorCap {
			targetN = pal8ColorCap
		}
		indices, pal, err := e.Quantizer.Quantize(buf, w, h, targetN)
		if err != nil {
			return nil, err
		}
		e.quantIndices = indices
		return pal, nil
	default:
		return nil, FormatError("unknown encoder format")
	}
}

func (e *Encoder) formatName() string {
	switch e.Format {
	case Pal1:
		return "Pal1"
	case Pal4:
		return "Pal4"
	case Pal8:
		return "Pal8"
	default:
		return "unknown"
	}
}

// Write emits the pixel data section: stride-padded rows, bottom-up
// unless topDown is set. pal is the result of a prior Prepare call (nil
// for Rgb24/Rgba32).
func (e *Encoder) Write(w stream.Writer, src PixelSource, pal Palette, topDown bool) error {
	width, height := src.Bounds()
	bpp := e.BitsPerPixel()
	stride := RowStride(width, bpp)
	row := make([]byte, stride)

	for i := 0; i < height; i++ {
		y := i
		if !topDown {
			y = height - 1 - i
		}
		for j := range row {
			row[j] = 0
		}
		e.packRow(row, src, pal, y, width)
		if err := w.WriteAll(row); err != nil {
			return &IOError{Op: "write pixel row", Err: err}
		}
	}
	return nil
}

func (e *Encoder) packRow(row []byte, src PixelSource, pal Palette, y, width int) {
	switch e.Format {
	case Rgb24:
		for x := 0; x < width; x++ {
			r, g, b, _ := src.At(x, y)
			off := x * 3
			row[off+0] = b
			row[off+1] = g
			row[off+2] = r
		}
	case Rgba32:
		for x := 0; x < width; x++ {
			r, g, b, a := src.At(x, y)
			if !e.PreserveAlpha {
				a = 0xFF
			}
			off := x * 4
			row[off+0] = b
			row[off+1] = g
			row[off+2] = r
			row[off+3] = a
		}
	case Pal1BW:
		for x := 0; x < width; x++ {
			r, _, _, _ := src.At(x, y)
			idx := byte(0)
			if r >= 128 {
				idx = 1
			}
			setPackedIndex(row, x, 1, idx)
		}
	case Pal8Grey:
		for x := 0; x < width; x++ {
			r, g, b, _ := src.At(x, y)
			setPackedIndex(row, x, 8, byte(luma(r, g, b)))
		}
	case Pal8Red:
		for x := 0; x < width; x++ {
			r, _, _, _ := src.At(x, y)
			row[x] = r
		}
	case Pal1, Pal4, Pal8:
		bpp := e.BitsPerPixel()
		width0, _ := src.Bounds()
		for x := 0; x < width; x++ {
			idx := e.quantIndices[y*width0+x]
			setPackedIndex(row, x, bpp, idx)
		}
	case Pal8Given:
		for x := 0; x < width; x++ {
			r, g, b, _ := src.At(x, y)
			row[x] = byte(pal.Index(RGB{R: r, G: g, B: b}))
		}
	}
}

func luma(r, g, b uint8) int {
	return (int(r)*299 + int(g)*587 + int(b)*114) / 1000
}

// setPackedIndex writes a sub-byte palette index into row at pixel x,
// for bpp in {1, 4, 8}.
func setPackedIndex(row []byte, x int, bpp uint16, idx byte) {
	switch bpp {
	case 8:
		row[x] = idx
	case 4:
		byteIdx := x / 2
		if x%2 == 0 {
			row[byteIdx] |= idx << 4
		} else {
			row[byteIdx] |= idx & 0x0F
		}
	case 1:
		byteIdx := x / 8
		bit := 7 - uint(x%8)
		if idx != 0 {
			row[byteIdx] |= 1 << bit
		}
	}
}

// WriteHeaderAndPalette is a convenience wrapper combining WriteHeader
// with the palette bytes for paletted formats; bmp and icocur call this
// once per frame before Encoder.Write.
func WriteHeaderAndPalette(w stream.Writer, width, height int, bpp uint16, pal Palette, resX, resY int, isIcon bool) error {
	if err := WriteHeader(w, width, height, bpp, len(pal), resX, resY, isIcon); err != nil {
		return err
	}
	if pal == nil {
		return nil
	}
	return w.WriteAll(pal.Bytes(4))
}
