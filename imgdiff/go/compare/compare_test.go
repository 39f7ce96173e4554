package compare

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go.skia.org/imgdiff/go/util"
	"go.skia.org/imgdiff/imgdiff/go/artifactstore"
	"go.skia.org/imgdiff/imgdiff/go/bitmap"
	"go.skia.org/imgdiff/imgdiff/go/codec"
	"go.skia.org/imgdiff/imgdiff/go/diff"
	"go.skia.org/imgdiff/imgdiff/go/image/text"
	"go.skia.org/imgdiff/imgdiff/go/mocks"
	"go.skia.org/imgdiff/imgdiff/go/scheduler"
	"go.skia.org/imgdiff/imgdiff/go/types"
)

const twoByTwo = `! SKTEXTSIMPLE
2 2
0x112233ff 0x445566ff
0x778899ff 0xaabbccff`

const twoByTwoChanged = `! SKTEXTSIMPLE
2 2
0x112233ff 0x445566ff
0x778899ff 0xaabbcdff`

const threeByOne = `! SKTEXTSIMPLE
3 1
0x112233ff 0x445566ff 0x778899ff`

func solid(w, h int, p uint32) *bitmap.Bitmap {
	b := bitmap.New(w, h)
	for i := range b.Pix {
		b.Pix[i] = p
	}
	return b
}

func writePNG(t *testing.T, path string, bm *bitmap.Bitmap) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer util.Close(f)
	require.NoError(t, codec.PNG{}.Encode(f, bm))
}

// pairPaths returns matching good and bad paths below a fresh directory.
func pairPaths(t *testing.T) (string, string) {
	dir := t.TempDir()
	return filepath.Join(dir, "good", "img.png"), filepath.Join(dir, "bad", "img.png")
}

func newComparator(t *testing.T) (*Comparator, *artifactstore.DiskStore) {
	store, err := artifactstore.New(filepath.Join(t.TempDir(), "artifacts"), codec.PNG{})
	require.NoError(t, err)
	return New(codec.PNG{}, store), store
}

// decodingCodec is a mock codec that really decodes PNGs, so tests can count
// how often decoding happens.
func decodingCodec() *mocks.Codec {
	mc := &mocks.Codec{}
	mc.On("Decode", mock.Anything).Return(func(b []byte) *bitmap.Bitmap {
		bm, err := codec.PNG{}.Decode(b)
		if err != nil {
			return nil
		}
		return bm
	}, func(b []byte) error {
		_, err := codec.PNG{}.Decode(b)
		return err
	})
	return mc
}

func TestCompare_RedVsBlue_Diff(t *testing.T) {
	good, bad := pairPaths(t)
	red := solid(10, 10, bitmap.Pack(0xff, 0, 0, 0xff))
	blue := solid(10, 10, bitmap.Pack(0, 0, 0xff, 0xff))
	writePNG(t, good, red)
	writePNG(t, bad, blue)

	c, store := newComparator(t)
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)

	assert.Equal(t, types.Diff, item.State)
	assert.Equal(t, 100, item.NumPixels)
	assert.Equal(t, 100, item.NumDiffPixels)
	assert.Equal(t, uint8(0xff), item.MaxChannelDelta)
	assert.Equal(t, [4]int{255, 0, 255, 0}, item.MaxRGBADiffs)

	d, err := diff.Difference(red, blue)
	require.NoError(t, err)
	assert.Equal(t, artifactstore.ContentKey(diff.Visualize(d)), item.DiffKey)
	assert.Equal(t, artifactstore.ContentKey(diff.Mask(d)), item.MaskKey)
	assert.FileExists(t, store.Path(item.DiffKey))
	assert.FileExists(t, store.Path(item.MaskKey))

	b, err := os.ReadFile(store.Path(item.DiffKey))
	require.NoError(t, err)
	stored, err := codec.PNG{}.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, solid(10, 10, bitmap.Pack(0xff, 0, 0xff, 0xff)), stored)
}

func TestCompare_SingleChannelDelta_Diff(t *testing.T) {
	good, bad := pairPaths(t)
	writePNG(t, good, text.MustToBitmap(twoByTwo))
	writePNG(t, bad, text.MustToBitmap(twoByTwoChanged))

	c, _ := newComparator(t)
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)

	assert.Equal(t, types.Diff, item.State)
	assert.Equal(t, 4, item.NumPixels)
	assert.Equal(t, 1, item.NumDiffPixels)
	assert.Equal(t, uint8(1), item.MaxChannelDelta)
	assert.Equal(t, [4]int{0, 0, 1, 0}, item.MaxRGBADiffs)
	assert.Equal(t, 25.0, item.PixelDiffPercent())
}

func TestCompare_SameDiffTwice_ArtifactsShared(t *testing.T) {
	dir := t.TempDir()
	c, store := newComparator(t)
	items := make([]types.WorkItem, 2)
	for i := range items {
		good := filepath.Join(dir, "good", string(rune('a'+i))+".png")
		bad := filepath.Join(dir, "bad", string(rune('a'+i))+".png")
		writePNG(t, good, text.MustToBitmap(twoByTwo))
		writePNG(t, bad, text.MustToBitmap(twoByTwoChanged))
		items[i] = types.WorkItem{GoodPath: good, BadPath: bad}
		c.Compare(context.Background(), &items[i])
	}
	assert.Equal(t, items[0].DiffKey, items[1].DiffKey)
	assert.Equal(t, items[0].MaskKey, items[1].MaskKey)
	assert.Equal(t, int64(2), store.Misses())
	assert.Equal(t, int64(2), store.Hits())
}

func TestCompare_IdenticalFiles_ByteEqualWithoutDecoding(t *testing.T) {
	good, bad := pairPaths(t)
	writePNG(t, good, text.MustToBitmap(twoByTwo))
	writePNG(t, bad, text.MustToBitmap(twoByTwo))

	mc := &mocks.Codec{}
	ms := &mocks.Store{}
	c := New(mc, ms)
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)

	assert.Equal(t, types.ByteEqual, item.State)
	mc.AssertNotCalled(t, "Decode", mock.Anything)
	ms.AssertNotCalled(t, "Put", mock.Anything)
	assert.Zero(t, item.NumPixels)
	assert.Empty(t, item.DiffKey)
}

func TestCompare_EmptyFilesBothSides_ByteEqual(t *testing.T) {
	good, bad := pairPaths(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(good), 0755))
	require.NoError(t, os.MkdirAll(filepath.Dir(bad), 0755))
	require.NoError(t, os.WriteFile(good, nil, 0644))
	require.NoError(t, os.WriteFile(bad, nil, 0644))

	c, _ := newComparator(t)
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)
	assert.Equal(t, types.ByteEqual, item.State)
}

func TestCompare_DifferentEncodingSamePixels_PixelEqual(t *testing.T) {
	good, bad := pairPaths(t)
	bm := text.MustToBitmap(twoByTwo)
	writePNG(t, good, bm)

	require.NoError(t, os.MkdirAll(filepath.Dir(bad), 0755))
	f, err := os.Create(bad)
	require.NoError(t, err)
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	require.NoError(t, enc.Encode(f, bm.ToNRGBA()))
	require.NoError(t, f.Close())

	mc := decodingCodec()
	ms := &mocks.Store{}
	c := New(mc, ms)
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)

	assert.Equal(t, types.PixelEqual, item.State)
	assert.Equal(t, 4, item.NumPixels)
	assert.Zero(t, item.NumDiffPixels)
	assert.Zero(t, item.MaxChannelDelta)
	mc.AssertNumberOfCalls(t, "Decode", 2)
	ms.AssertNotCalled(t, "Put", mock.Anything)
}

func TestCompare_BadMissing_Missing(t *testing.T) {
	good, bad := pairPaths(t)
	writePNG(t, good, text.MustToBitmap(twoByTwo))

	mc := &mocks.Codec{}
	c := New(mc, &mocks.Store{})
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)

	assert.Equal(t, types.Missing, item.State)
	mc.AssertNotCalled(t, "Decode", mock.Anything)
}

func TestCompare_GoodMissing_Missing(t *testing.T) {
	good, bad := pairPaths(t)
	writePNG(t, bad, text.MustToBitmap(twoByTwo))

	c, _ := newComparator(t)
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)
	assert.Equal(t, types.Missing, item.State)
}

func TestCompare_BadIsDirectory_Missing(t *testing.T) {
	good, bad := pairPaths(t)
	writePNG(t, good, text.MustToBitmap(twoByTwo))
	require.NoError(t, os.MkdirAll(bad, 0755))

	c, _ := newComparator(t)
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)
	assert.Equal(t, types.Missing, item.State)
}

func TestCompare_CorruptCandidate_Incomparable(t *testing.T) {
	good, bad := pairPaths(t)
	writePNG(t, good, text.MustToBitmap(twoByTwo))
	require.NoError(t, os.MkdirAll(filepath.Dir(bad), 0755))
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0644))

	c, _ := newComparator(t)
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)
	assert.Equal(t, types.Incomparable, item.State)
	assert.Zero(t, item.NumPixels)
}

func TestCompare_DifferentDimensions_Incomparable(t *testing.T) {
	good, bad := pairPaths(t)
	writePNG(t, good, text.MustToBitmap(twoByTwo))
	writePNG(t, bad, text.MustToBitmap(threeByOne))

	ms := &mocks.Store{}
	c := New(codec.PNG{}, ms)
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)
	assert.Equal(t, types.Incomparable, item.State)
	ms.AssertNotCalled(t, "Put", mock.Anything)
}

func TestCompare_DecodesToEmptyBitmap_Incomparable(t *testing.T) {
	good, bad := pairPaths(t)
	writePNG(t, good, text.MustToBitmap(twoByTwo))
	writePNG(t, bad, text.MustToBitmap(twoByTwoChanged))

	mc := &mocks.Codec{}
	mc.On("Decode", mock.Anything).Return(bitmap.New(0, 0), nil)
	c := New(mc, &mocks.Store{})
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)
	assert.Equal(t, types.Incomparable, item.State)
}

func TestCompare_StoreFails_StillDiffWithEmptyKeys(t *testing.T) {
	good, bad := pairPaths(t)
	writePNG(t, good, text.MustToBitmap(twoByTwo))
	writePNG(t, bad, text.MustToBitmap(twoByTwoChanged))

	ms := &mocks.Store{}
	ms.On("Put", mock.Anything).Return("", errors.New("read-only filesystem"))
	c := New(codec.PNG{}, ms)
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)

	assert.Equal(t, types.Diff, item.State)
	assert.Equal(t, 1, item.NumDiffPixels)
	assert.Empty(t, item.DiffKey)
	assert.Empty(t, item.MaskKey)
	ms.AssertNumberOfCalls(t, "Put", 2)
}

func TestCompare_MaskStoreFails_DiffKeyKept(t *testing.T) {
	good, bad := pairPaths(t)
	writePNG(t, good, text.MustToBitmap(twoByTwo))
	writePNG(t, bad, text.MustToBitmap(twoByTwoChanged))

	ms := &mocks.Store{}
	ms.On("Put", mock.Anything).Return("0123456789abcdef", nil).Once()
	ms.On("Put", mock.Anything).Return("", errors.New("quota")).Once()
	c := New(codec.PNG{}, ms)
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)

	assert.Equal(t, types.Diff, item.State)
	assert.Equal(t, "0123456789abcdef", item.DiffKey)
	assert.Empty(t, item.MaskKey)
}

func TestStoreArtifacts_BothFail_BothErrorsReported(t *testing.T) {
	ms := &mocks.Store{}
	ms.On("Put", mock.Anything).Return("", errors.New("first")).Once()
	ms.On("Put", mock.Anything).Return("", errors.New("second")).Once()
	c := New(codec.PNG{}, ms)
	item := types.WorkItem{}
	err := c.storeArtifacts(&item, solid(1, 1, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}

func TestCompare_TenByTenVsTwentyByTwenty_Incomparable(t *testing.T) {
	good, bad := pairPaths(t)
	writePNG(t, good, solid(10, 10, bitmap.Pack(0xff, 0, 0, 0xff)))
	writePNG(t, bad, solid(20, 20, bitmap.Pack(0xff, 0, 0, 0xff)))

	c, store := newComparator(t)
	item := types.WorkItem{GoodPath: good, BadPath: bad}
	c.Compare(context.Background(), &item)
	assert.Equal(t, types.Incomparable, item.State)
	assert.Equal(t, int64(0), store.Misses())
}

func TestCompare_ManyDuplicateDiffsInParallel_SharedArtifacts(t *testing.T) {
	const n = 24
	dir := t.TempDir()
	items := make([]types.WorkItem, n)
	for i := range items {
		name := fmt.Sprintf("img%02d.png", i)
		good := filepath.Join(dir, "good", name)
		bad := filepath.Join(dir, "bad", name)
		writePNG(t, good, text.MustToBitmap(twoByTwo))
		writePNG(t, bad, text.MustToBitmap(twoByTwoChanged))
		items[i] = types.WorkItem{GoodPath: good, BadPath: bad}
	}
	c, store := newComparator(t)
	scheduler.Run(context.Background(), n, 8, func(ctx context.Context, i int) {
		c.Compare(ctx, &items[i])
	})

	for _, item := range items {
		require.Equal(t, types.Diff, item.State)
		assert.Equal(t, items[0].DiffKey, item.DiffKey)
		assert.Equal(t, items[0].MaskKey, item.MaskKey)
	}
	assert.NotEqual(t, items[0].DiffKey, items[0].MaskKey)
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, int64(2*n), store.Hits()+store.Misses())
}
