// Derived from Go which is licensed as follows:
//
// Copyright (c) 2009 The Go Authors. All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are
// met:
//
//   * Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//   * Redistributions in binary form must reproduce the above
// copyright notice, this list of conditions and the following disclaimer
// in the documentation and/or other materials provided with the
// distribution.
//   * Neither the name of Google Inc. nor the names of its
// contributors may be used to endorse or promote products derived from
// this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
// "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
// LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
// A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
// OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
// LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
// DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
// THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
// (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

package dib

import "strconv"

// RGB is a single 8-bit-per-channel color-table entry.
type RGB struct {
	R, G, B uint8
}

// Palette is an ordered table of at most 256 RGB entries. In memory the
// order is insertion order; on disk entries are stored BGR (plus a zero
// reserved byte for 4-byte entries in BITMAPINFOHEADER and later).
type Palette []RGB

const maxPaletteEntries = 256

// ReadPalette reads n entries from b, each entrySize bytes (3 for
// BITMAPCOREHEADER, 4 for BITMAPINFOHEADER and later).
func ReadPalette(b []byte, n, entrySize int) (Palette, error) {
	if n < 0 || n > maxPaletteEntries {
		return nil, FormatError("invalid color count " + strconv.Itoa(n))
	}
	if len(b) < n*entrySize {
		return nil, TruncatedError("short palette data")
	}
	pal := make(Palette, n)
	for i := range pal {
		off := i * entrySize
		// Entries are stored in BGR order on disk, regardless of entry size.
		pal[i] = RGB{R: b[off+2], G: b[off+1], B: b[off+0]}
	}
	return pal, nil
}

// Bytes serializes the palette to its on-disk form, entrySize bytes per
// entry (a trailing zero reserved byte when entrySize == 4).
func (p Palette) Bytes(entrySize int) []byte {
	b := make([]byte, len(p)*entrySize)
	for i, c := range p {
		off := i * entrySize
		b[off+0] = c.B
		b[off+1] = c.G
		b[off+2] = c.R
	}
	return b
}

// Index returns the index of the nearest palette entry to c by squared
// Euclidean distance, used by the Pal8Given encoder to map pixels onto
// the caller's own palette.
func (p Palette) Index(c RGB) int {
	best, bestDist := 0, -1
	for i, e := range p {
		dr := int(e.R) - int(c.R)
		dg := int(e.G) - int(c.G)
		db := int(e.B) - int(c.B)
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
			if dist == 0 {
				break
			}
		}
	}
	return best
}
