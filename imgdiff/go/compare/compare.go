// Package compare classifies a single baseline/candidate pair, cheapest test
// first: open, raw bytes, decoded dimensions, then pixels.
package compare

import (
	"bytes"
	"context"

	multierror "github.com/hashicorp/go-multierror"
	"go.opencensus.io/trace"

	"go.skia.org/imgdiff/go/metrics2"
	"go.skia.org/imgdiff/go/sklog"
	"go.skia.org/imgdiff/go/util"
	"go.skia.org/imgdiff/imgdiff/go/artifactstore"
	"go.skia.org/imgdiff/imgdiff/go/bitmap"
	"go.skia.org/imgdiff/imgdiff/go/codec"
	"go.skia.org/imgdiff/imgdiff/go/diff"
	"go.skia.org/imgdiff/imgdiff/go/mapfile"
	"go.skia.org/imgdiff/imgdiff/go/types"
)

const (
	pairsMetric       = "imgdiff_pairs"
	diffPercentMetric = "imgdiff_diff_pixel_percent"
)

// Comparator compares pairs of image files. It is safe for concurrent use as
// long as each call gets its own WorkItem.
type Comparator struct {
	codec codec.Codec
	store artifactstore.Store
}

// New returns a Comparator that decodes with c and saves diff images to s.
func New(c codec.Codec, s artifactstore.Store) *Comparator {
	return &Comparator{
		codec: c,
		store: s,
	}
}

// Compare fills in the State and, for decodable pairs, the metrics of item.
// Nothing but item is modified and no error escapes: failures to open or
// decode become states, failures to store artifacts leave the keys empty.
func (c *Comparator) Compare(ctx context.Context, item *types.WorkItem) {
	_, span := trace.StartSpan(ctx, "imgdiff_Compare")
	defer span.End()

	item.State = c.classify(item)
	span.AddAttributes(
		trace.StringAttribute("good", item.GoodPath),
		trace.StringAttribute("state", item.State.String()),
	)
	metrics2.GetCounter(pairsMetric, map[string]string{"state": item.State.String()}).Inc(1)
	if item.State == types.Diff {
		metrics2.GetFloat64SummaryMetric(diffPercentMetric).Observe(item.PixelDiffPercent())
	}
}

func (c *Comparator) classify(item *types.WorkItem) types.State {
	good, err := mapfile.Open(item.GoodPath)
	if err != nil {
		sklog.Debugf("Could not open %s: %s", item.GoodPath, err)
		return types.Missing
	}
	defer util.Close(good)
	bad, err := mapfile.Open(item.BadPath)
	if err != nil {
		sklog.Debugf("Could not open %s: %s", item.BadPath, err)
		return types.Missing
	}
	defer util.Close(bad)

	if bytes.Equal(good.Bytes(), bad.Bytes()) {
		return types.ByteEqual
	}

	goodImg := c.decode(item.GoodPath, good.Bytes())
	if goodImg.IsEmpty() {
		return types.Incomparable
	}
	badImg := c.decode(item.BadPath, bad.Bytes())
	if badImg.IsEmpty() {
		return types.Incomparable
	}
	if !goodImg.SameSize(badImg) {
		sklog.Debugf("Dimensions differ for %s: %dx%d vs %dx%d", item.GoodPath, goodImg.Width, goodImg.Height, badImg.Width, badImg.Height)
		return types.Incomparable
	}

	d, m, err := diff.Compute(goodImg, badImg)
	if err != nil {
		sklog.Errorf("Diffing %s: %s", item.GoodPath, err)
		return types.Incomparable
	}
	item.NumPixels = m.NumPixels
	item.NumDiffPixels = m.NumDiffPixels
	item.MaxChannelDelta = m.MaxChannelDelta
	item.MaxRGBADiffs = m.MaxRGBADiffs
	if m.NumDiffPixels == 0 {
		return types.PixelEqual
	}
	if err := c.storeArtifacts(item, d); err != nil {
		sklog.Errorf("Storing diff images for %s: %s", item.GoodPath, err)
	}
	return types.Diff
}

// decode returns nil if b cannot be decoded.
func (c *Comparator) decode(path string, b []byte) *bitmap.Bitmap {
	bm, err := c.codec.Decode(b)
	if err != nil {
		sklog.Debugf("Could not decode %s: %s", path, err)
		return nil
	}
	return bm
}

// storeArtifacts saves the visualized difference and its mask. Each key is set
// only if its image was stored.
func (c *Comparator) storeArtifacts(item *types.WorkItem, d *bitmap.Bitmap) error {
	var errs *multierror.Error
	if key, err := c.store.Put(diff.Visualize(d)); err != nil {
		errs = multierror.Append(errs, err)
	} else {
		item.DiffKey = key
	}
	if key, err := c.store.Put(diff.Mask(d)); err != nil {
		errs = multierror.Append(errs, err)
	} else {
		item.MaskKey = key
	}
	return errs.ErrorOrNil()
}
