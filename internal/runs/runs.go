// Package runs turns a black-and-white frame into per-scanline lists of
// horizontal dark-pixel spans ("vectors").
package runs

import (
	"errors"
	"fmt"
	"math"

	"github.com/kizza7984/bvf-encode/internal/types"
)

// Threshold is the intensity below which a pixel counts as "on".
const Threshold = math.MaxUint8 / 2

// ErrNoRunStart is returned when a run end is detected without a pending start.
var ErrNoRunStart = errors.New("run end without start")

// Vector is an inclusive span of on pixels on one scanline.
type Vector struct {
	Start uint8
	End   uint8
}

// Line holds the vectors of one scanline, left to right.
type Line []Vector

// Frame holds one Line per scanline, top to bottom.
type Frame []Line

// VectorCount returns the total number of vectors in the frame.
func (f Frame) VectorCount() int {
	n := 0
	for _, l := range f {
		n += len(l)
	}
	return n
}

// Source is anything that can be sampled pixel by pixel.
type Source interface {
	Width() int
	Height() int
	// Intensity returns the 8-bit value of the pixel's first channel.
	Intensity(x, y int) uint8
}

// On reports whether a pixel with the given intensity is dark.
func On(intensity uint8) bool {
	return intensity < Threshold
}

// ToByte narrows a coordinate or count to a single byte.
func ToByte(v int, what string) (uint8, error) {
	if v < 0 || v > math.MaxUint8 {
		return 0, fmt.Errorf("%w: %s %d does not fit in a byte", types.ErrRange, what, v)
	}
	return uint8(v), nil
}

// ExtractSized checks src against the declared resolution before extracting.
func ExtractSized(src Source, width, height int) (Frame, error) {
	if src.Width() != width || src.Height() != height {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d",
			types.ErrDimensionMismatch, src.Width(), src.Height(), width, height)
	}
	return Extract(src)
}

// Extract scans src row by row, left to right, and returns its runs.
func Extract(src Source) (Frame, error) {
	w, h := src.Width(), src.Height()
	if _, err := ToByte(w, "frame too wide: width"); err != nil {
		return nil, err
	}
	if _, err := ToByte(h, "frame too tall: height"); err != nil {
		return nil, err
	}

	frame := make(Frame, h)
	var s scanner
	for y := 0; y < h; y++ {
		s.reset(w)
		for x := 0; x < w; x++ {
			if err := s.step(uint8(x), On(src.Intensity(x, y))); err != nil {
				return nil, fmt.Errorf("line %d: %w", y, err)
			}
		}
		frame[y] = s.finish()
	}
	return frame, nil
}
