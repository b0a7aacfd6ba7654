// Package quant implements color quantization: reducing a true-color
// RGB image to a palette of at most N colors, for the paletted BMP
// encoders in package dib.
package quant

import (
	"sort"

	"github.com/paulcor/godib/dib"
)

// MaxQuantizeColors is the default cap Quantize applies when targetN <= 0.
// The reference tool this package's algorithm is grounded on reports
// allocation failures above 236 colors on constrained targets; callers
// that don't share that constraint can pass a larger targetN directly.
const MaxQuantizeColors = 236

// MedianCut is a dib.Quantizer that recursively splits the color space
// along its longest axis, one box per desired palette entry, and assigns
// each pixel to the average color of the box containing it.
type MedianCut struct{}

type box struct {
	pixels                             []int // indices into the flat src buffer, one per pixel
	rMin, rMax, gMin, gMax, bMin, bMax uint8
}

// Quantize implements dib.Quantizer. src is a flat w*h*3 RGB buffer.
func (mc MedianCut) Quantize(src []byte, w, h, targetN int) ([]byte, dib.Palette, error) {
	n := w * h
	if len(src) < n*3 {
		return nil, nil, dib.TruncatedError("quantizer source buffer")
	}
	if targetN <= 0 {
		targetN = MaxQuantizeColors
	}
	if n == 0 {
		return nil, nil, nil
	}

	at := func(i int) (uint8, uint8, uint8) {
		off := i * 3
		return src[off], src[off+1], src[off+2]
	}

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	boxes := []box{newBox(at, all)}

	for len(boxes) < targetN {
		splitIdx := widestBox(boxes)
		if splitIdx < 0 {
			break // every remaining box holds a single color
		}
		a, b := splitBox(at, boxes[splitIdx])
		boxes[splitIdx] = a
		boxes = append(boxes, b)
	}

	pal := make(dib.Palette, len(boxes))
	for i, bx := range boxes {
		pal[i] = averageColor(at, bx.pixels)
	}

	indices := make([]byte, n)
	for bi, bx := range boxes {
		for _, pi := range bx.pixels {
			indices[pi] = byte(bi)
		}
	}
	return indices, pal, nil
}

func newBox(at func(int) (uint8, uint8, uint8), idx []int) box {
	bx := box{pixels: idx}
	bx.rMin, bx.gMin, bx.bMin = 255, 255, 255
	for _, i := range idx {
		r, g, b := at(i)
		if r < bx.rMin {
			bx.rMin = r
		}
		if r > bx.rMax {
			bx.rMax = r
		}
		if g < bx.gMin {
			bx.gMin = g
		}
		if g > bx.gMax {
			bx.gMax = g
		}
		if b < bx.bMin {
			bx.bMin = b
		}
		if b > bx.bMax {
			bx.bMax = b
		}
	}
	return bx
}

func (bx box) longestAxis() (axis byte, span int) {
	rSpan := int(bx.rMax) - int(bx.rMin)
	gSpan := int(bx.gMax) - int(bx.gMin)
	bSpan := int(bx.bMax) - int(bx.bMin)
	axis, span = 'r', rSpan
	if gSpan > span {
		axis, span = 'g', gSpan
	}
	if bSpan > span {
		axis, span = 'b', bSpan
	}
	return axis, span
}

// widestBox returns the index of the box with the largest splittable
// axis span, or -1 if none can be split further.
func widestBox(boxes []box) int {
	best, bestSpan := -1, 0
	for i, bx := range boxes {
		if len(bx.pixels) < 2 {
			continue
		}
		_, span := bx.longestAxis()
		if span > bestSpan || (span == bestSpan && best < 0) {
			best, bestSpan = i, span
		}
	}
	if bestSpan == 0 {
		return -1
	}
	return best
}

func splitBox(at func(int) (uint8, uint8, uint8), bx box) (box, box) {
	axis, _ := bx.longestAxis()
	idx := append([]int(nil), bx.pixels...)
	sort.Slice(idx, func(i, j int) bool {
		ra, ga, ba := at(idx[i])
		rb, gb, bb := at(idx[j])
		switch axis {
		case 'r':
			return ra < rb
		case 'g':
			return ga < gb
		default:
			return ba < bb
		}
	})
	mid := len(idx) / 2
	return newBox(at, idx[:mid]), newBox(at, idx[mid:])
}

func averageColor(at func(int) (uint8, uint8, uint8), idx []int) dib.RGB {
	var r, g, b int
	for _, i := range idx {
		cr, cg, cb := at(i)
		r += int(cr)
		g += int(cg)
		b += int(cb)
	}
	n := len(idx)
	if n == 0 {
		return dib.RGB{}
	}
	return dib.RGB{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n)}
}
