// Package source loads frame images from disk and exposes them as pixel
// sources for the run extractor.
package source

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"

	"github.com/kizza7984/bvf-encode/internal/types"
)

// Image adapts an image.Image to runs.Source. Coordinates are relative to the
// image bounds, so sub-images work as expected.
type Image struct {
	img image.Image
	min image.Point
	w   int
	h   int
}

// FromImage wraps img.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	return &Image{img: img, min: b.Min, w: b.Dx(), h: b.Dy()}
}

func (s *Image) Width() int  { return s.w }
func (s *Image) Height() int { return s.h }

// Intensity returns the red channel of the non-premultiplied 8-bit colour.
func (s *Image) Intensity(x, y int) uint8 {
	c := color.NRGBAModel.Convert(s.img.At(s.min.X+x, s.min.Y+y)).(color.NRGBA)
	return c.R
}

// Open decodes the frame at path. A missing file is reported as
// types.ErrMissingFrame; anything else is a decode failure.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrMissingFrame, path)
		}
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("malformed frame %s: %w", path, err)
	}
	return FromImage(img), nil
}
