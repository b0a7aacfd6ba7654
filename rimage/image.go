// Package rimage is the in-memory image container the bmp and icocur
// codecs decode into and encode from: an uncompressed 8-bit-per-channel
// RGB pixel buffer, an optional alpha plane, an optional transparency
// mask color, a source palette, and a small bag of format-specific
// options (resolution, cursor hotspot, preferred BMP output format).
package rimage

import (
	"github.com/paulcor/godib/dib"
)

// OptionKey names one of the small set of format-specific knobs callers
// can stash on an Image, mirroring wxImage's SetOption/GetOptionInt.
type OptionKey int

const (
	// BMPFormat holds a dib.Format value: the caller's preferred output
	// pixel layout. The bmp and icocur encoders do not read it; bmp.Codec
	// takes its format as an Encode argument and icocur picks its own.
	BMPFormat OptionKey = iota
	// ResolutionUnit is 0 (unspecified, defaults to 72ppi on encode), 1
	// (inches) or 2 (centimeters).
	ResolutionUnit
	ResolutionX
	ResolutionY
	// CurHotspotX/Y are meaningful only for CUR entries.
	CurHotspotX
	CurHotspotY
)

// Mask is a single RGB color flagged as "transparent" wherever it
// appears in Pix, wxImage's masked-color transparency model.
type Mask struct {
	R, G, B uint8
}

// Image is the pixel container passed between the bmp/icocur codecs and
// their callers.
type Image struct {
	Width, Height int
	Pix           []byte // len 3*Width*Height, row-major top-down RGB
	Alpha         []byte // len Width*Height, nil if the image has no alpha
	Mask          *Mask
	Palette       dib.Palette
	Options       map[OptionKey]int
}

// Create allocates a Width x Height image, fully black and opaque.
func Create(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]byte, width*height*3)}
}

// FromDecoded adopts a dib.DecodedImage's buffers directly, without
// copying.
func FromDecoded(d *dib.DecodedImage) *Image {
	return &Image{
		Width:   d.Width,
		Height:  d.Height,
		Pix:     d.Pix,
		Alpha:   d.Alpha,
		Palette: d.Palette,
	}
}

// Bounds and At satisfy dib.PixelSource, letting an Image feed an
// Encoder directly.
func (img *Image) Bounds() (w, h int) { return img.Width, img.Height }

func (img *Image) At(x, y int) (r, g, b, a uint8) {
	off := (y*img.Width + x) * 3
	r, g, b = img.Pix[off], img.Pix[off+1], img.Pix[off+2]
	a = 0xFF
	if img.Alpha != nil {
		a = img.Alpha[y*img.Width+x]
	}
	return
}

// GetData returns the RGB pixel buffer.
func (img *Image) GetData() []byte { return img.Pix }

// GetAlpha returns the alpha plane, or nil if the image has none.
func (img *Image) GetAlpha() []byte { return img.Alpha }

// HasAlpha reports whether the image carries an alpha plane.
func (img *Image) HasAlpha() bool { return img.Alpha != nil }

// SetAlpha installs alpha as the image's alpha plane; alpha must have
// Width*Height bytes. Passing nil allocates a fully-opaque plane.
func (img *Image) SetAlpha(alpha []byte) error {
	n := img.Width * img.Height
	if alpha == nil {
		alpha = make([]byte, n)
		for i := range alpha {
			alpha[i] = 0xFF
		}
	}
	if len(alpha) != n {
		return dib.FormatError("alpha plane size mismatch")
	}
	img.Alpha = alpha
	return nil
}

// ClearAlpha removes the alpha plane.
func (img *Image) ClearAlpha() { img.Alpha = nil }

// SetMask enables or disables mask-based transparency. Disabling clears
// the mask color; enabling with no prior color defaults to black.
func (img *Image) SetMask(enable bool) {
	if !enable {
		img.Mask = nil
		return
	}
	if img.Mask == nil {
		img.Mask = &Mask{}
	}
}

// HasMask reports whether a mask color is active.
func (img *Image) HasMask() bool { return img.Mask != nil }

// SetMaskFromImage marks img's mask color as (r, g, b) and overwrites
// every pixel in img whose counterpart in maskSrc equals (r, g, b) with
// that same color, so a later renderer honoring Mask treats those pixels
// as transparent. maskSrc must have the same dimensions as img. The
// icocur decoder does not use it: it turns a DIB's 1-bit AND mask into
// an alpha plane instead.
func (img *Image) SetMaskFromImage(maskSrc *Image, r, g, b uint8) error {
	if maskSrc.Width != img.Width || maskSrc.Height != img.Height {
		return dib.FormatError("mask image dimensions don't match")
	}
	img.Mask = &Mask{R: r, G: g, B: b}
	for i := 0; i < img.Width*img.Height; i++ {
		off := i * 3
		if maskSrc.Pix[off] == r && maskSrc.Pix[off+1] == g && maskSrc.Pix[off+2] == b {
			img.Pix[off], img.Pix[off+1], img.Pix[off+2] = r, g, b
		}
	}
	return nil
}

// SetOption stashes a format-specific integer option.
func (img *Image) SetOption(key OptionKey, value int) {
	if img.Options == nil {
		img.Options = make(map[OptionKey]int)
	}
	img.Options[key] = value
}

// GetOptionInt returns a previously-stashed option, or 0 if unset.
func (img *Image) GetOptionInt(key OptionKey) int {
	return img.Options[key]
}
