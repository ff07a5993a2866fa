package bvf

import (
	"errors"
	"fmt"
	"io"

	"github.com/kizza7984/bvf-encode/internal/runs"
	"github.com/kizza7984/bvf-encode/internal/types"
)

var (
	errShortHeader   = errors.New("bvf: header must be 7 bytes")
	errHeaderWritten = errors.New("bvf: header already written")
	errNoHeader      = errors.New("bvf: header not written")
)

// Encoder appends a BVF stream to w. It is not safe for concurrent use; frames
// must be written in playback order.
type Encoder struct {
	w             io.Writer
	meta          Metadata
	headerWritten bool
	frames        uint32
	bytes         int64
}

// NewEncoder returns an encoder for a stream described by meta.
func NewEncoder(w io.Writer, meta Metadata) *Encoder {
	return &Encoder{w: w, meta: meta}
}

// FramesWritten returns the number of frames committed so far.
func (e *Encoder) FramesWritten() uint32 { return e.frames }

// BytesWritten returns the number of bytes handed to the sink.
func (e *Encoder) BytesWritten() int64 { return e.bytes }

// WriteHeader writes the metadata record. It must be called exactly once,
// before any frame.
func (e *Encoder) WriteHeader() error {
	if e.headerWritten {
		return errHeaderWritten
	}
	b, _ := e.meta.MarshalBinary()
	if err := e.write(b); err != nil {
		return err
	}
	e.headerWritten = true
	return nil
}

// WriteFrame writes one record per scanline of f.
func (e *Encoder) WriteFrame(f runs.Frame) error {
	if !e.headerWritten {
		return errNoHeader
	}
	if e.frames >= e.meta.FrameCount {
		return fmt.Errorf("%w: frame %d exceeds frame count %d", types.ErrRange, e.frames+1, e.meta.FrameCount)
	}
	if len(f) != int(e.meta.VerticalResolution) {
		return fmt.Errorf("%w: frame has %d lines, want %d",
			types.ErrDimensionMismatch, len(f), e.meta.VerticalResolution)
	}

	buf := make([]byte, 0, 1+2*int(e.meta.HorizontalResolution))
	for y, line := range f {
		var err error
		buf, err = e.appendLine(buf[:0], line)
		if err != nil {
			return fmt.Errorf("line %d: %w", y, err)
		}
		if err := e.write(buf); err != nil {
			return err
		}
	}
	e.frames++
	return nil
}

// Close checks that every frame announced in the header was written. It does
// not close the underlying writer.
func (e *Encoder) Close() error {
	if !e.headerWritten {
		return errNoHeader
	}
	if e.frames != e.meta.FrameCount {
		return fmt.Errorf("bvf: wrote %d of %d frames", e.frames, e.meta.FrameCount)
	}
	return nil
}

func (e *Encoder) appendLine(b []byte, line runs.Line) ([]byte, error) {
	n, err := runs.ToByte(len(line), "vectors on line")
	if err != nil {
		return nil, err
	}
	b = append(b, n)
	for _, v := range line {
		if v.Start > v.End || v.End >= e.meta.HorizontalResolution {
			return nil, fmt.Errorf("%w: vector %d..%d outside width %d",
				types.ErrRange, v.Start, v.End, e.meta.HorizontalResolution)
		}
		b = append(b, v.Start, v.End)
	}
	return b, nil
}

func (e *Encoder) write(b []byte) error {
	n, err := e.w.Write(b)
	e.bytes += int64(n)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrSinkWrite, err)
	}
	return nil
}
