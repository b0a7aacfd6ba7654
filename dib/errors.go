package dib

import "errors"

// FormatError reports that the input is not validly shaped (bad magic,
// bad header, a bad RLE stream, and the like). A missing Pal8Given
// palette is reported as ErrMissingPalette instead.
type FormatError string

func (e FormatError) Error() string { return "dib: invalid format: " + string(e) }

// UnsupportedError reports a structurally valid but unimplemented feature,
// such as JPEG/PNG-in-BMP compression.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "dib: unsupported feature: " + string(e) }

// TruncatedError reports that the stream ended before a header or pixel
// read completed.
type TruncatedError string

func (e TruncatedError) Error() string { return "dib: truncated: " + string(e) }

// IOError wraps an underlying stream I/O failure.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return "dib: " + e.Op + ": " + e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }

// ErrMissingPalette is returned when Pal8Given is requested on an image
// without a palette.
var ErrMissingPalette = errors.New("dib: image has no palette for Pal8Given")

// ErrAlloc names the failure to allocate an output buffer. No code path
// in this module returns it: the decoder allocates its buffers with make
// and performs no size check beyond Header's 32767-pixel dimension limit.
var ErrAlloc = errors.New("dib: output buffer allocation failed")
