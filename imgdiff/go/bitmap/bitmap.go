// Package bitmap contains the canonical decoded raster used by imgdiff: a
// flat buffer of packed 8-bit RGBA pixels.
package bitmap

import (
	"encoding/binary"
	"image"
	"image/draw"
)

// Channel indices into a packed pixel.
const (
	R = 0
	G = 1
	B = 2
	A = 3
)

// Bitmap is a width x height raster. Pix holds one word per pixel, row major,
// with channel c stored in bits 8c through 8c+7. That is the little-endian
// reading of the R, G, B, A bytes of an image.NRGBA.
//
// A Bitmap with zero width or height is considered absent.
type Bitmap struct {
	Pix    []uint32
	Width  int
	Height int
}

// New returns a zeroed bitmap of the given size.
func New(width, height int) *Bitmap {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Bitmap{
		Pix:    make([]uint32, width*height),
		Width:  width,
		Height: height,
	}
}

// IsEmpty returns true for nil or zero sized bitmaps.
func (b *Bitmap) IsEmpty() bool {
	return b == nil || b.Width == 0 || b.Height == 0
}

// SameSize returns true if both bitmaps have the same dimensions.
func (b *Bitmap) SameSize(o *Bitmap) bool {
	return b.Width == o.Width && b.Height == o.Height
}

// At returns the packed pixel at (x, y).
func (b *Bitmap) At(x, y int) uint32 {
	return b.Pix[y*b.Width+x]
}

// Set stores the packed pixel at (x, y).
func (b *Bitmap) Set(x, y int, p uint32) {
	b.Pix[y*b.Width+x] = p
}

// Pack builds a pixel word from its channels.
func Pack(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

// Channel extracts channel c (R, G, B or A) from a pixel word.
func Channel(p uint32, c int) uint8 {
	return uint8(p >> (8 * c))
}

// FromImage copies any image.Image into a Bitmap, converting to
// non-premultiplied 8-bit RGBA. The origin of the result is always (0, 0).
func FromImage(img image.Image) *Bitmap {
	nrgba := toNRGBA(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	ret := New(w, h)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+4*w]
		out := ret.Pix[y*w : (y+1)*w]
		for x := range out {
			out[x] = binary.LittleEndian.Uint32(row[4*x:])
		}
	}
	return ret
}

// ToNRGBA returns the bitmap as an image.NRGBA with origin (0, 0).
func (b *Bitmap) ToNRGBA() *image.NRGBA {
	ret := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, p := range b.Pix {
		binary.LittleEndian.PutUint32(ret.Pix[4*i:], p)
	}
	return ret
}

// toNRGBA converts img to an NRGBA whose Pix starts at the image origin. If it
// already is such an image it is returned as is.
func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba
	}
	bounds := img.Bounds()
	ret := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(ret, ret.Bounds(), img, bounds.Min, draw.Src)
	return ret
}
