package bvf

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/kizza7984/bvf-encode/internal/runs"
)

// FrameVisitor receives each decoded frame with its 1-based index. The frame
// is not retained by Decode. Returning an error stops decoding.
type FrameVisitor func(index uint32, f runs.Frame) error

// Decode reads a complete BVF stream, handing frames to visit one at a time so
// memory stays bounded by a single frame. Trailing bytes after the last frame
// are an error.
//
// Zero-height frames occupy no bytes, so when VerticalResolution is 0 the
// frame count is taken from the header and visit is not called.
func Decode(r io.Reader, visit FrameVisitor) (Metadata, error) {
	br := bufio.NewReader(r)

	var meta Metadata
	hdr := make([]byte, HeaderSize)
	if _, err := io.ReadFull(br, hdr); err != nil {
		return meta, fmt.Errorf("reading header: %w", err)
	}
	if err := meta.UnmarshalBinary(hdr); err != nil {
		return meta, err
	}

	if meta.VerticalResolution > 0 {
		for n := uint64(1); n <= uint64(meta.FrameCount); n++ {
			i := uint32(n)
			f, err := readFrame(br, meta)
			if err != nil {
				return meta, fmt.Errorf("frame %d %w", i, err)
			}
			if visit != nil {
				if err := visit(i, f); err != nil {
					return meta, err
				}
			}
		}
	}

	if _, err := br.ReadByte(); err == nil {
		return meta, errors.New("bvf: trailing data after last frame")
	}
	return meta, nil
}

func readFrame(br *bufio.Reader, meta Metadata) (runs.Frame, error) {
	f := make(runs.Frame, meta.VerticalResolution)
	for y := range f {
		n, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", y, unexpected(err))
		}
		line := make(runs.Line, n)
		for j := range line {
			var pair [2]byte
			if _, err := io.ReadFull(br, pair[:]); err != nil {
				return nil, fmt.Errorf("line %d: %w", y, unexpected(err))
			}
			line[j] = runs.Vector{Start: pair[0], End: pair[1]}
		}
		f[y] = line
	}
	return f, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
