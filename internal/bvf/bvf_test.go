package bvf

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/kizza7984/bvf-encode/internal/runs"
	"github.com/kizza7984/bvf-encode/internal/types"
)

// failWriter rejects every write after the first n bytes.
type failWriter struct {
	n int
}

func (f *failWriter) Write(p []byte) (int, error) {
	if len(p) > f.n {
		return 0, errors.New("disk full")
	}
	f.n -= len(p)
	return len(p), nil
}

// countingWriter records the size of every Write call.
type countingWriter struct {
	bytes.Buffer
	calls []int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.calls = append(c.calls, len(p))
	return c.Buffer.Write(p)
}

func TestMetadataMarshal(t *testing.T) {
	m := Metadata{FrameRate: 30, FrameCount: 0x01020304, HorizontalResolution: 128, VerticalResolution: 64}
	b, err := m.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{30, 0x04, 0x03, 0x02, 0x01, 128, 64}
	if !bytes.Equal(b, want) {
		t.Errorf("MarshalBinary() = %v, want %v", b, want)
	}

	var got Metadata
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if got != m {
		t.Errorf("UnmarshalBinary() = %+v, want %+v", got, m)
	}
	if err := got.UnmarshalBinary(b[:6]); err == nil {
		t.Error("Expected error for short header")
	}
}

func TestEncodeEndToEnd(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, Metadata{FrameRate: 24, FrameCount: 1, HorizontalResolution: 4, VerticalResolution: 1})

	if err := enc.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if err := enc.WriteFrame(runs.Frame{{{Start: 1, End: 2}}}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	want := []byte{24, 1, 0, 0, 0, 4, 1, 1, 1, 2}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("Stream = %v, want %v", buf.Bytes(), want)
	}
	if enc.BytesWritten() != int64(len(want)) {
		t.Errorf("BytesWritten() = %d, want %d", enc.BytesWritten(), len(want))
	}
}

func TestEncodeZeroFrames(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, Metadata{FrameRate: 12, FrameCount: 0, HorizontalResolution: 8, VerticalResolution: 8})
	if err := enc.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close() on zero-frame stream failed: %v", err)
	}
	if buf.Len() != HeaderSize {
		t.Errorf("Expected header-only stream of %d bytes, got %d", HeaderSize, buf.Len())
	}
}

func TestEncodeEmptyLines(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, Metadata{FrameRate: 1, FrameCount: 1, HorizontalResolution: 7, VerticalResolution: 3})
	enc.WriteHeader()
	if err := enc.WriteFrame(runs.Frame{{}, {{Start: 0, End: 6}}, {}}); err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 1, 0, 6, 0}
	if got := buf.Bytes()[HeaderSize:]; !bytes.Equal(got, want) {
		t.Errorf("Frame bytes = %v, want %v", got, want)
	}
}

func TestEncodeOneWritePerLine(t *testing.T) {
	w := &countingWriter{}
	enc := NewEncoder(w, Metadata{FrameRate: 1, FrameCount: 1, HorizontalResolution: 8, VerticalResolution: 2})
	enc.WriteHeader()
	enc.WriteFrame(runs.Frame{{{Start: 0, End: 1}, {Start: 4, End: 5}}, {}})

	want := []int{HeaderSize, 5, 1}
	if !reflect.DeepEqual(w.calls, want) {
		t.Errorf("Write calls = %v, want %v", w.calls, want)
	}
}

func TestEncoderErrors(t *testing.T) {
	meta := Metadata{FrameRate: 1, FrameCount: 1, HorizontalResolution: 4, VerticalResolution: 1}

	t.Run("Frame before header", func(t *testing.T) {
		enc := NewEncoder(&bytes.Buffer{}, meta)
		if err := enc.WriteFrame(runs.Frame{{}}); err == nil {
			t.Error("Expected error")
		}
	})

	t.Run("Header twice", func(t *testing.T) {
		enc := NewEncoder(&bytes.Buffer{}, meta)
		enc.WriteHeader()
		if err := enc.WriteHeader(); err == nil {
			t.Error("Expected error")
		}
	})

	t.Run("Too many frames", func(t *testing.T) {
		enc := NewEncoder(&bytes.Buffer{}, meta)
		enc.WriteHeader()
		enc.WriteFrame(runs.Frame{{}})
		if err := enc.WriteFrame(runs.Frame{{}}); !errors.Is(err, types.ErrRange) {
			t.Errorf("Expected ErrRange, got %v", err)
		}
	})

	t.Run("Too few frames", func(t *testing.T) {
		enc := NewEncoder(&bytes.Buffer{}, meta)
		enc.WriteHeader()
		if err := enc.Close(); err == nil {
			t.Error("Expected error")
		}
	})

	t.Run("Wrong line count", func(t *testing.T) {
		enc := NewEncoder(&bytes.Buffer{}, meta)
		enc.WriteHeader()
		if err := enc.WriteFrame(runs.Frame{{}, {}}); !errors.Is(err, types.ErrDimensionMismatch) {
			t.Errorf("Expected ErrDimensionMismatch, got %v", err)
		}
	})

	t.Run("Vector outside width", func(t *testing.T) {
		enc := NewEncoder(&bytes.Buffer{}, meta)
		enc.WriteHeader()
		if err := enc.WriteFrame(runs.Frame{{{Start: 2, End: 4}}}); !errors.Is(err, types.ErrRange) {
			t.Errorf("Expected ErrRange, got %v", err)
		}
	})

	t.Run("Sink failure", func(t *testing.T) {
		enc := NewEncoder(&failWriter{n: HeaderSize}, meta)
		if err := enc.WriteHeader(); err != nil {
			t.Fatal(err)
		}
		if err := enc.WriteFrame(runs.Frame{{{Start: 0, End: 1}}}); !errors.Is(err, types.ErrSinkWrite) {
			t.Errorf("Expected ErrSinkWrite, got %v", err)
		}
	})
}

func TestDecodeRoundTrip(t *testing.T) {
	meta := Metadata{FrameRate: 10, FrameCount: 2, HorizontalResolution: 6, VerticalResolution: 2}
	frames := []runs.Frame{
		{{{Start: 0, End: 5}}, {}},
		{{{Start: 1, End: 1}, {Start: 3, End: 4}}, {{Start: 5, End: 5}}},
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf, meta)
	enc.WriteHeader()
	for _, f := range frames {
		if err := enc.WriteFrame(f); err != nil {
			t.Fatal(err)
		}
	}

	var gotFrames []runs.Frame
	gotMeta, err := Decode(bytes.NewReader(buf.Bytes()), func(i uint32, f runs.Frame) error {
		if i != uint32(len(gotFrames)+1) {
			t.Errorf("Visited frame %d out of order", i)
		}
		gotFrames = append(gotFrames, f)
		return nil
	})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if gotMeta != meta {
		t.Errorf("Decode() metadata = %+v, want %+v", gotMeta, meta)
	}
	if !reflect.DeepEqual(gotFrames, frames) {
		t.Errorf("Decode() frames = %v, want %v", gotFrames, frames)
	}

	if _, err := Decode(bytes.NewReader(buf.Bytes()[:buf.Len()-1]), nil); err == nil {
		t.Error("Expected error for truncated stream")
	}
	if _, err := Decode(bytes.NewReader(append(buf.Bytes(), 0)), nil); err == nil {
		t.Error("Expected error for trailing data")
	}
}

func TestDecodeZeroHeightFrames(t *testing.T) {
	// Four billion zero-height frames occupy no bytes after the header.
	stream := []byte{1, 0xff, 0xff, 0xff, 0xff, 0, 0}

	visits := 0
	meta, err := Decode(bytes.NewReader(stream), func(uint32, runs.Frame) error {
		visits++
		return nil
	})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if meta.FrameCount != 0xffffffff || meta.VerticalResolution != 0 {
		t.Errorf("Decode() metadata = %+v", meta)
	}
	if visits != 0 {
		t.Errorf("Expected no frame visits for zero-height frames, got %d", visits)
	}
}

func TestDecodeVisitorStops(t *testing.T) {
	stream := []byte{1, 3, 0, 0, 0, 2, 1, 0, 0, 0}
	stop := errors.New("stop")

	visits := 0
	_, err := Decode(bytes.NewReader(stream), func(uint32, runs.Frame) error {
		visits++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Expected visitor error, got %v", err)
	}
	if visits != 1 {
		t.Errorf("Expected decoding to stop after 1 frame, got %d visits", visits)
	}
}
