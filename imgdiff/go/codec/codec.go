// Package codec converts encoded image files to and from bitmap.Bitmap.
package codec

import (
	"bytes"
	"image/png"
	"io"

	"go.skia.org/imgdiff/go/skerr"
	"go.skia.org/imgdiff/imgdiff/go/bitmap"
)

// Codec decodes file contents into bitmaps and encodes bitmaps for storage.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Decode returns the bitmap held in b.
	Decode(b []byte) (*bitmap.Bitmap, error)

	// Encode writes bm to w.
	Encode(w io.Writer, bm *bitmap.Bitmap) error

	// Extension is the file extension of encoded images, without the dot.
	Extension() string
}

// PNG implements Codec for PNG files. Decoded images are always expanded to
// 8-bit non-premultiplied RGBA.
type PNG struct{}

// Decode implements the Codec interface.
func (PNG) Decode(b []byte) (*bitmap.Bitmap, error) {
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, skerr.Wrapf(err, "decoding %d byte PNG", len(b))
	}
	return bitmap.FromImage(img), nil
}

// Encode implements the Codec interface. It favors speed over size since diff
// images are written once and viewed rarely.
func (PNG) Encode(w io.Writer, bm *bitmap.Bitmap) error {
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(w, bm.ToNRGBA()); err != nil {
		return skerr.Wrapf(err, "encoding %dx%d PNG", bm.Width, bm.Height)
	}
	return nil
}

// Extension implements the Codec interface.
func (PNG) Extension() string {
	return "png"
}

// Make sure PNG fulfills the Codec interface.
var _ Codec = PNG{}
