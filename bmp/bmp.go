// Package bmp is the public BMP (Windows Bitmap) codec: the 14-byte file
// header wrapped around a dib.Header, palette and pixel payload.
package bmp

import (
	"io"

	"github.com/paulcor/godib/byteorder"
	"github.com/paulcor/godib/dib"
	"github.com/paulcor/godib/internal/logger"
	"github.com/paulcor/godib/rimage"
	"github.com/paulcor/godib/stream"
)

const fileHeaderLen = 14

// Codec decodes and encodes BMP files. The zero value is ready to use; a
// Logger and Verbose may be set for diagnostic output on failure.
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
		c.log().Errorf("bmp: %s: %v", op, err)
	}
	return err
}

// Probe reports whether b begins with the BMP magic "BM".
func Probe(b []byte) bool {
	return len(b) >= 2 && b[0] == 'B' && b[1] == 'M'
}

// Inspect parses the file and DIB header chain (and palette, if any)
// without decoding pixel data, for tools that only need to report on a
// BMP's shape.
func (c *Codec) Inspect(r io.Reader) (*dib.Header, error) {
	sr := stream.NewReader(r, 8192)
	h, _, err := c.readHeader(sr)
	return h, err
}

func (c *Codec) readHeader(sr stream.Reader) (*dib.Header, int64, error) {
	var fh [fileHeaderLen]byte
	if err := sr.ReadFull(fh[:]); err != nil {
		return nil, 0, c.fail("read file header", dib.TruncatedError("file header"))
	}
	if fh[0] != 'B' || fh[1] != 'M' {
		return nil, 0, c.fail("check magic", dib.FormatError("not a BMP file"))
	}
	pixelOffset := int64(byteorder.Uint32(fh[10:14]))

	h, err := dib.ParseHeader(sr, false)
	if err != nil {
		return nil, 0, c.fail("parse header", err)
	}

	consumed := int64(fileHeaderLen) + int64(h.HeaderSize)
	if n := h.EffectiveNumColors(); n > 0 {
		entrySize := h.PaletteEntrySize()
		buf := make([]byte, n*entrySize)
		if err := sr.ReadFull(buf); err != nil {
			return nil, 0, c.fail("read palette", dib.TruncatedError("palette"))
		}
		pal, err := dib.ReadPalette(buf, n, entrySize)
		if err != nil {
			return nil, 0, c.fail("decode palette", err)
		}
		h.Palette = pal
		consumed += int64(len(buf))
	}
	return h, pixelOffset - consumed, nil
}

// Decode reads a complete BMP file from r.
func (c *Codec) Decode(r io.Reader) (*rimage.Image, error) {
	sr := stream.NewReader(r, 8192)

	h, skip, err := c.readHeader(sr)
	if err != nil {
		return nil, err
	}
	if skip > 0 {
		if _, err := sr.SeekI(skip, io.SeekCurrent); err != nil {
			return nil, c.fail("seek to pixel data", &dib.IOError{Op: "seek to pixel data", Err: err})
		}
	}

	dec := dib.NewDecoder(h)
	decoded, err := dec.Decode(sr)
	if err != nil {
		return nil, c.fail("decode pixels", err)
	}

	img := rimage.FromDecoded(decoded)
	if h.HasResolution {
		img.SetOption(rimage.ResolutionUnit, 2)
		img.SetOption(rimage.ResolutionX, h.ResX)
		img.SetOption(rimage.ResolutionY, h.ResY)
	}
	return img, nil
}

// Encode writes img to w as a BMP file in the given output format.
func (c *Codec) Encode(w io.Writer, img *rimage.Image, format dib.Format, q dib.Quantizer) error {
	enc := &dib.Encoder{Format: format, Quantizer: q, GivenPalette: img.Palette, PreserveAlpha: img.HasAlpha()}
	pal, err := enc.Prepare(img)
	if err != nil {
		return c.fail("prepare encoder", err)
	}

	bpp := enc.BitsPerPixel()
	stride := dib.RowStride(img.Width, bpp)
	pixelBytes := int64(stride) * int64(img.Height)
	paletteBytes := int64(len(pal)) * 4
	headerLen := int64(dib.HeaderLen(bpp, false))
	pixelOffset := int64(fileHeaderLen) + headerLen + paletteBytes
	totalSize := pixelOffset + pixelBytes

	cw := stream.NewWriter(w)
	var fh [fileHeaderLen]byte
	fh[0], fh[1] = 'B', 'M'
	byteorder.PutUint32(fh[2:6], uint32(totalSize))
	byteorder.PutUint32(fh[10:14], uint32(pixelOffset))
	if err := cw.WriteAll(fh[:]); err != nil {
		return c.fail("write file header", &dib.IOError{Op: "write file header", Err: err})
	}

	// ResolutionX/Y, when set, are pixels per inch if ResolutionUnit is 1
	// and pixels per centimeter otherwise; ResolutionPPCM converts them to
	// the pixels-per-centimeter unit dib.Header uses, and supplies the
	// 72ppi default for an unset axis.
	resX, resY := dib.ResolutionPPCM(0, false, false), dib.ResolutionPPCM(0, false, false)
	if img.Options != nil {
		cm := img.Options[rimage.ResolutionUnit] != 1
		if v, ok := img.Options[rimage.ResolutionX]; ok {
			resX = dib.ResolutionPPCM(v, true, cm)
		}
		if v, ok := img.Options[rimage.ResolutionY]; ok {
			resY = dib.ResolutionPPCM(v, true, cm)
		}
	}
	if err := dib.WriteHeaderAndPalette(cw, img.Width, img.Height, bpp, pal, resX, resY, false); err != nil {
		return c.fail("write header", err)
	}
	if err := enc.Write(cw, img, pal, false); err != nil {
		return c.fail("write pixels", err)
	}
	return nil
}
