// Package diff computes the per-pixel difference of two bitmaps and reduces it
// to the metrics used to rank how badly two images disagree.
package diff

import (
	"go.skia.org/imgdiff/go/skerr"
	"go.skia.org/imgdiff/go/util"
	"go.skia.org/imgdiff/imgdiff/go/bitmap"
)

// DefaultChunkSize is the number of pixels reduced into one partial result
// before partials are combined.
const DefaultChunkSize = 4096

const (
	alphaMask = 0xff000000
	colorMask = 0x00ffffff
)

// Metrics summarizes a difference bitmap.
type Metrics struct {
	// NumPixels is the total number of pixels compared.
	NumPixels int
	// NumDiffPixels is the number of pixels where any channel differs.
	NumDiffPixels int
	// MaxChannelDelta is the largest difference seen in any channel.
	MaxChannelDelta uint8
	// MaxRGBADiffs is the largest difference seen per channel.
	MaxRGBADiffs [4]int
}

// satSub subtracts each byte of b from the matching byte of a, clamping at
// zero instead of borrowing from the next byte.
func satSub(a, b uint32) uint32 {
	var ret uint32
	for shift := 0; shift < 32; shift += 8 {
		ac, bc := (a>>shift)&0xff, (b>>shift)&0xff
		if ac > bc {
			ret |= (ac - bc) << shift
		}
	}
	return ret
}

// absDiff returns the per-channel absolute difference of two pixels. At most
// one of the two saturating subtractions is non-zero in each channel, so the
// OR combines them without carries, and absDiff(a, b) == absDiff(b, a).
func absDiff(a, b uint32) uint32 {
	return satSub(a, b) | satSub(b, a)
}

// Difference returns a bitmap where every channel of every pixel is the
// absolute difference of the corresponding channels of good and bad. The
// result is the same if the arguments are swapped.
func Difference(good, bad *bitmap.Bitmap) (*bitmap.Bitmap, error) {
	if !good.SameSize(bad) {
		return nil, skerr.Fmt("dimensions differ: %dx%d vs %dx%d", good.Width, good.Height, bad.Width, bad.Height)
	}
	ret := bitmap.New(good.Width, good.Height)
	for i, g := range good.Pix {
		ret.Pix[i] = absDiff(g, bad.Pix[i])
	}
	return ret, nil
}

// partial is the reduction of one chunk of pixels.
type partial struct {
	count int
	max   [4]uint8
}

func (p *partial) combine(o partial) {
	p.count += o.count
	for c := range p.max {
		if o.max[c] > p.max[c] {
			p.max[c] = o.max[c]
		}
	}
}

func reduceChunk(pix []uint32) partial {
	var ret partial
	for _, d := range pix {
		if d == 0 {
			continue
		}
		ret.count++
		for c := range ret.max {
			if v := bitmap.Channel(d, c); v > ret.max[c] {
				ret.max[c] = v
			}
		}
	}
	return ret
}

// Reduce computes the metrics of a difference bitmap as returned by
// Difference.
func Reduce(d *bitmap.Bitmap) Metrics {
	return reduceWithChunkSize(d, DefaultChunkSize)
}

func reduceWithChunkSize(d *bitmap.Bitmap, chunkSize int) Metrics {
	var total partial
	err := util.ChunkIter(len(d.Pix), chunkSize, func(start, end int) error {
		total.combine(reduceChunk(d.Pix[start:end]))
		return nil
	})
	// ChunkIter only fails for a chunkSize < 1, which is a programming error.
	if err != nil {
		panic(err)
	}
	ret := Metrics{
		NumPixels:     len(d.Pix),
		NumDiffPixels: total.count,
	}
	for c, m := range total.max {
		ret.MaxRGBADiffs[c] = int(m)
		if m > ret.MaxChannelDelta {
			ret.MaxChannelDelta = m
		}
	}
	return ret
}

// Compute returns Difference(good, bad) together with its metrics.
func Compute(good, bad *bitmap.Bitmap) (*bitmap.Bitmap, Metrics, error) {
	d, err := Difference(good, bad)
	if err != nil {
		return nil, Metrics{}, err
	}
	return d, Reduce(d), nil
}

// Visualize turns a difference bitmap into a viewable image by inverting the
// alpha channel: pixels whose alpha matched become opaque and show the color
// delta, identical pixels become opaque black.
func Visualize(d *bitmap.Bitmap) *bitmap.Bitmap {
	ret := bitmap.New(d.Width, d.Height)
	for i, p := range d.Pix {
		ret.Pix[i] = p ^ alphaMask
	}
	return ret
}

// Mask highlights where two images differ. Each color channel is 0xff if
// that channel differs and 0 otherwise. Alpha is 0xff where the alpha channel
// matched, so pixels that only differ in transparency show as holes.
func Mask(d *bitmap.Bitmap) *bitmap.Bitmap {
	ret := bitmap.New(d.Width, d.Height)
	for i, p := range d.Pix {
		var eq uint32
		for c := 0; c < 4; c++ {
			if bitmap.Channel(p, c) == 0 {
				eq |= 0xff << (8 * c)
			}
		}
		ret.Pix[i] = eq ^ colorMask
	}
	return ret
}
