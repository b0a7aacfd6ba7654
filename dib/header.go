package dib

import (
	"strconv"

	"github.com/paulcor/godib/byteorder"
	"github.com/paulcor/godib/stream"
)

// Compression is the BMP compression method, BI_RGB and friends.
type Compression uint32

const (
	CompRGB       Compression = 0
	CompRLE8      Compression = 1
	CompRLE4      Compression = 2
	CompBitFields Compression = 3
)

const (
	infoHeaderLen   = 40
	v4InfoHeaderLen = 108
	v5InfoHeaderLen = 124
	coreHeaderLen   = 12
	bitFieldsLen    = 12 // R, G, B masks
	alphaMaskLen    = 4  // A mask, present when HeaderSize >= 56

	maxDimension = 32767
)

// Header is the fully-parsed DIB header chain: BITMAPCOREHEADER through
// BITMAPV5HEADER, collapsed to the fields this codec cares about.
type Header struct {
	HeaderSize   uint32
	Width        int
	Height       int // always positive after Parse
	TopDown      bool
	BitsPerPixel uint16
	Compression  Compression
	NumColors    int // as declared on disk; 0 means "implicit full palette" for bpp<16
	RMask        uint32
	GMask        uint32
	BMask        uint32
	AMask        uint32
	HasBitFields bool
	HasResolution bool
	ResX, ResY   int // pixels per centimeter

	Palette Palette // populated by the caller after Parse, from the following bytes

	// IsIcon marks that this DIB is the color plane of an ICO/CUR entry:
	// its on-disk height field is double the image height, and row order
	// is always bottom-up regardless of the sign of that field.
	IsIcon bool
}

// EffectiveNumColors applies invariant 2: an unpopulated NumColors at
// bpp < 16 means the implicit full 1<<bpp palette.
func (h *Header) EffectiveNumColors() int {
	if h.BitsPerPixel < 16 && h.NumColors == 0 {
		return 1 << h.BitsPerPixel
	}
	return h.NumColors
}

// PaletteEntrySize is 3 bytes for BITMAPCOREHEADER, 4 (BGR + reserved)
// otherwise.
func (h *Header) PaletteEntrySize() int {
	if h.HeaderSize == coreHeaderLen {
		return 3
	}
	return 4
}

// ParseHeader reads a DIB header chain from r, positioned at the start of
// the header (hdrSize field). isIcon marks an ICO/CUR color-plane DIB,
// whose on-disk height is double the image height and whose row order is
// always bottom-up.
func ParseHeader(r stream.Reader, isIcon bool) (*Header, error) {
	var b [16]byte
	if err := r.ReadFull(b[:4]); err != nil {
		return nil, TruncatedError("DIB header size")
	}
	hdrSize := byteorder.Uint32(b[:4])

	h := &Header{HeaderSize: hdrSize, IsIcon: isIcon}
	switch {
	case hdrSize == coreHeaderLen:
		if err := h.parseCore(r); err != nil {
			return nil, err
		}
	case hdrSize >= infoHeaderLen:
		if err := h.parseInfo(r); err != nil {
			return nil, err
		}
	default:
		return nil, UnsupportedError("DIB header size " + strconv.Itoa(int(hdrSize)))
	}

	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Header) parseCore(r stream.Reader) error {
	var b [8]byte
	if err := r.ReadFull(b[:]); err != nil {
		return TruncatedError("BITMAPCOREHEADER")
	}
	h.Width = int(byteorder.Int16(b[0:2]))
	rawHeight := int(byteorder.Int16(b[2:4]))
	// b[4:6] is the planes count, read but never validated.
	h.BitsPerPixel = byteorder.Uint16(b[6:8])
	h.Compression = CompRGB
	h.NumColors = 0
	h.setHeight(rawHeight)
	return nil
}

func (h *Header) parseInfo(r stream.Reader) error {
	var b [36]byte
	if err := r.ReadFull(b[:]); err != nil {
		return TruncatedError("BITMAPINFOHEADER")
	}
	h.Width = int(byteorder.Int32(b[0:4]))
	rawHeight := int(byteorder.Int32(b[4:8]))
	// b[8:10] is the planes count, read but never validated.
	h.BitsPerPixel = byteorder.Uint16(b[10:12])
	h.Compression = Compression(byteorder.Uint32(b[12:16]))
	// b[16:20] is the compressed size, ignored.
	h.ResX = int(byteorder.Int32(b[20:24])) / 100
	h.ResY = int(byteorder.Int32(b[24:28])) / 100
	h.HasResolution = true
	h.NumColors = int(byteorder.Int32(b[28:32]))
	// b[32:36] is the "important colors" count, ignored.

	bytesRead := infoHeaderLen
	if h.Compression == CompBitFields {
		n := bitFieldsLen
		if h.HeaderSize >= 56 {
			n += alphaMaskLen
		}
		mb := make([]byte, n)
		if err := r.ReadFull(mb); err != nil {
			return TruncatedError("BITFIELDS masks")
		}
		h.RMask = byteorder.Uint32(mb[0:4])
		h.GMask = byteorder.Uint32(mb[4:8])
		h.BMask = byteorder.Uint32(mb[8:12])
		h.HasBitFields = true
		bytesRead += bitFieldsLen
		if h.HeaderSize >= 56 {
			h.AMask = byteorder.Uint32(mb[12:16])
			bytesRead += alphaMaskLen
		}
	}

	if skip := int(h.HeaderSize) - bytesRead; skip > 0 {
		if _, err := r.SeekI(int64(skip), 1 /* io.SeekCurrent */); err != nil {
			return &IOError{Op: "seek past DIB header", Err: err}
		}
	}

	h.setHeight(rawHeight)
	return nil
}

// setHeight applies the ICO/CUR height-doubling convention and records
// row order; for icons row order is always bottom-up.
func (h *Header) setHeight(raw int) {
	if h.IsIcon {
		raw /= 2
		if raw < 0 {
			raw = -raw
		}
		h.Height = raw
		h.TopDown = false
		return
	}
	if raw < 0 {
		h.TopDown = true
		raw = -raw
	}
	h.Height = raw
}

func (h *Header) validate() error {
	switch h.BitsPerPixel {
	case 1, 4, 8, 16, 24, 32:
	default:
		return FormatError("unsupported bit depth " + strconv.Itoa(int(h.BitsPerPixel)))
	}
	if h.Width <= 0 || h.Width > maxDimension {
		return FormatError("width out of range")
	}
	if h.Height <= 0 || h.Height > maxDimension {
		return FormatError("height out of range")
	}
	switch h.Compression {
	case CompRGB:
	case CompRLE4:
		if h.BitsPerPixel != 4 {
			return FormatError("RLE4 requires 4 bpp")
		}
	case CompRLE8:
		if h.BitsPerPixel != 8 {
			return FormatError("RLE8 requires 8 bpp")
		}
	case CompBitFields:
		if h.BitsPerPixel != 16 && h.BitsPerPixel != 32 {
			return FormatError("BITFIELDS requires 16 or 32 bpp")
		}
	case 4, 5:
		return UnsupportedError("JPEG/PNG-in-BMP compression")
	default:
		return FormatError("unknown compression method")
	}
	if h.NumColors < 0 || h.NumColors > maxPaletteEntries {
		return FormatError("invalid color count " + strconv.Itoa(h.NumColors))
	}
	return nil
}

// EffectiveBitFields returns the BitFields to use for decoding/encoding
// 16/32-bit pixels: the header's explicit masks when present, otherwise
// the platform default for the bit depth (and, for 32-bit ICO/CUR, the
// implicit alpha mask).
func (h *Header) EffectiveBitFields() BitFields {
	r, g, b, a := h.RMask, h.GMask, h.BMask, h.AMask
	if !h.HasBitFields {
		switch h.BitsPerPixel {
		case 16:
			r, g, b = defaultMask16R, defaultMask16G, defaultMask16B
		case 32:
			r, g, b = defaultMask32R, defaultMask32G, defaultMask32B
			if h.IsIcon {
				a = defaultMask32A
			}
		}
	}
	// Alpha is only ever honoured for the canonical 32-bit ARGB layout.
	if !(r == defaultMask32R && g == defaultMask32G && b == defaultMask32B && a == defaultMask32A) {
		a = 0
	}
	return NewBitFields(r, g, b, a)
}

// HasAlphaChannel reports whether this header's masks qualify for an
// alpha plane at all (32-bit ARGB only).
func (h *Header) HasAlphaChannel() bool {
	return h.BitsPerPixel == 32 && h.EffectiveBitFields().ABits == 8
}

// HeaderLen returns the number of bytes WriteHeader will emit for the
// given bit depth and isIcon flag, so callers can compute a pixel-data
// offset before calling it.
func HeaderLen(bpp uint16, isIcon bool) int {
	if bpp == 32 && !isIcon {
		return bitFieldsHeaderLen
	}
	return infoHeaderLen
}

// bitFieldsHeaderLen is BITMAPINFOHEADER plus explicit R/G/B/A masks
// (the informal "BITMAPV2/V3"-sized 56-byte extension many writers use to
// flag BI_BITFIELDS with alpha without committing to a full V4 header).
const bitFieldsHeaderLen = infoHeaderLen + bitFieldsLen + alphaMaskLen

// WriteHeader emits a BITMAPINFOHEADER for the given image geometry.
// height is the image's own height; for ICO/CUR callers double it per
// the on-disk convention before calling, or pass isIcon=true to have
// WriteHeader do it.
//
// A standalone (non-icon) 32-bit image gets an explicit BI_BITFIELDS
// header with the canonical ARGB masks, so a later Decode recognizes its
// alpha plane: per EffectiveBitFields, alpha on a plain BMP is only
// honoured when the header carries those masks explicitly, unlike the
// ICO/CUR case where they're implied by isIcon alone.
func WriteHeader(w stream.Writer, width, height int, bpp uint16, numColors int, resX, resY int, isIcon bool) error {
	withBitFields := bpp == 32 && !isIcon
	hdrLen := uint32(infoHeaderLen)
	if withBitFields {
		hdrLen = bitFieldsHeaderLen
	}

	b := make([]byte, hdrLen)
	byteorder.PutUint32(b[0:4], hdrLen)
	byteorder.PutInt32(b[4:8], int32(width))
	h := height
	if isIcon {
		h *= 2
	}
	byteorder.PutInt32(b[8:12], int32(h))
	byteorder.PutUint16(b[12:14], 1) // planes
	byteorder.PutUint16(b[14:16], bpp)
	comp := CompRGB
	if withBitFields {
		comp = CompBitFields
	}
	byteorder.PutUint32(b[16:20], uint32(comp))
	byteorder.PutUint32(b[20:24], 0) // image size, left to the caller's discretion
	byteorder.PutInt32(b[24:28], int32(resX)*100)
	byteorder.PutInt32(b[28:32], int32(resY)*100)
	byteorder.PutUint32(b[32:36], uint32(numColors))
	byteorder.PutUint32(b[36:40], 0) // important colors
	if withBitFields {
		byteorder.PutUint32(b[40:44], defaultMask32R)
		byteorder.PutUint32(b[44:48], defaultMask32G)
		byteorder.PutUint32(b[48:52], defaultMask32B)
		byteorder.PutUint32(b[52:56], defaultMask32A)
	}
	return w.WriteAll(b)
}

// ResolutionPPCM converts a caller-specified resolution to pixels per
// centimeter, the unit Header.ResX/ResY are kept in (and that WriteHeader
// expects): a pixels-per-inch value becomes ppi/2.54, a pixels-per-cm
// value passes through unchanged, and an unspecified resolution defaults
// to 72 ppi.
func ResolutionPPCM(value int, haveRes bool, cm bool) int {
	if !haveRes {
		value, cm = 72, false
	}
	if cm {
		return value
	}
	return int(float64(value)/2.54 + 0.5)
}
