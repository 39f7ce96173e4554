// Package text contains an image plain text file format encoder and decoder.
//
// A super simple format of the form:
//
//	! SKTEXTSIMPLE
//	width height
//	0x000000ff 0xffffffff ...
//	0xddddddff 0xffffff88 ...
//	...
//
// Where the pixel values are encoded as 0xRRGGBBAA.
//
// Grayscale pixels can be encoded as 0xXX. The two images below are equivalent:
//
//	! SKTEXTSIMPLE
//	2 2
//	0x00 0x11
//	0xaa 0xbb
//
//	! SKTEXTSIMPLE
//	2 2
//	0x000000ff 0x111111ff
//	0xaaaaaaff 0xbbbbbbff
//
// imgdiff uses it to write readable test fixtures.
package text

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	"go.skia.org/imgdiff/go/skerr"
	"go.skia.org/imgdiff/imgdiff/go/bitmap"
)

const skTextHeader = "! SKTEXTSIMPLE\n"

// dim returns the dimensions of the image.
func dim(reader *bufio.Reader) (int, int, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		return 0, 0, skerr.Wrapf(err, "reading SKTEXT header")
	}
	if line != skTextHeader {
		return 0, 0, skerr.Fmt("Not a valid SKTEXT file: %q", line)
	}
	line, err = reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, 0, skerr.Wrapf(err, "reading SKTEXT dimensions")
	}
	width, height := 0, 0
	if n, err := fmt.Sscanf(line, "%d %d", &width, &height); err != nil || n != 2 {
		return 0, 0, skerr.Fmt("Not a valid SKTEXT file, couldn't find width and height in %q", line)
	}
	return width, height, nil
}

func parsePixel(h string) (color.NRGBA, error) {
	if !strings.HasPrefix(h, "0x") || (len(h) != 4 && len(h) != 10) {
		return color.NRGBA{}, skerr.Fmt("Invalid pixel format, must be 0xRRGGBBAA or 0xXX (for color or grayscale pixels, respectively), got %q", h)
	}
	pixel, err := strconv.ParseUint(h, 0, 32)
	if err != nil {
		return color.NRGBA{}, skerr.Wrap(err)
	}
	if len(h) == 4 {
		return color.NRGBA{R: uint8(pixel), G: uint8(pixel), B: uint8(pixel), A: 0xff}, nil
	}
	return color.NRGBA{
		R: uint8(pixel >> 24),
		G: uint8(pixel >> 16),
		B: uint8(pixel >> 8),
		A: uint8(pixel),
	}, nil
}

// Decode reads an SKTEXT image from r and returns it as an image.Image.
// The type of Image returned will always be NRGBA.
func Decode(r io.Reader) (image.Image, error) {
	reader := bufio.NewReader(r)
	width, height, err := dim(reader)
	if err != nil {
		return nil, err
	}
	ret := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; ; y++ {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, skerr.Wrapf(readErr, "reading SKTEXT row %d", y)
		}
		fields := strings.Fields(line)
		if len(fields) > 0 {
			if y >= height {
				return nil, skerr.Fmt("Too many y values: %d > %d", y+1, height)
			}
			if len(fields) > width {
				return nil, skerr.Fmt("Too many x values: %d > %d", len(fields), width)
			}
			for x, h := range fields {
				c, err := parsePixel(h)
				if err != nil {
					return nil, err
				}
				ret.SetNRGBA(x, y, c)
			}
		}
		if readErr == io.EOF {
			return ret, nil
		}
	}
}

// DecodeConfig returns the color model and dimensions of SKTEXT image without
// decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	width, height, err := dim(bufio.NewReader(r))
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      width,
		Height:     height,
	}, nil
}

// Encode writes the image in SKTEXT format.
func Encode(w io.Writer, m *image.NRGBA) error {
	width, height := m.Rect.Dx(), m.Rect.Dy()
	if _, err := fmt.Fprintf(w, "%s%d %d\n", skTextHeader, width, height); err != nil {
		return skerr.Wrap(err)
	}
	for y := 0; y < height; y++ {
		row := make([]string, 0, width)
		for x := 0; x < width; x++ {
			c := m.NRGBAAt(m.Rect.Min.X+x, m.Rect.Min.Y+y)
			row = append(row, fmt.Sprintf("0x%02x%02x%02x%02x", c.R, c.G, c.B, c.A))
		}
		sep := "\n"
		// Don't add a trailing \n to the very last line.
		if y == height-1 {
			sep = ""
		}
		if _, err := fmt.Fprint(w, strings.Join(row, " ")+sep); err != nil {
			return skerr.Wrap(err)
		}
	}
	return nil
}

func init() {
	image.RegisterFormat("sktext", skTextHeader, Decode, DecodeConfig)
}

// MustToNRGBA returns an *image.NRGBA from a given string, which is assumed to be an image in the
// SKTEXTSIMPLE "codec". It panics if the string cannot be processed into an image, suitable only
// for testing code.
func MustToNRGBA(s string) *image.NRGBA {
	img, err := Decode(strings.NewReader(s))
	if err != nil {
		// This indicates an error with the static test data.
		panic(fmt.Sprintf("Failed to decode a valid image: %s", err))
	}
	return img.(*image.NRGBA)
}

// MustToBitmap is MustToNRGBA followed by bitmap.FromImage.
func MustToBitmap(s string) *bitmap.Bitmap {
	return bitmap.FromImage(MustToNRGBA(s))
}
