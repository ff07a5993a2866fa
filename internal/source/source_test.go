package source

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/kizza7984/bvf-encode/internal/types"
)

func TestIntensity(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.Black)
	img.Set(1, 0, color.White)
	img.Set(2, 0, color.RGBA{R: 100, G: 255, B: 255, A: 255})

	s := FromImage(img)
	if s.Width() != 3 || s.Height() != 1 {
		t.Fatalf("Expected 3x1, got %dx%d", s.Width(), s.Height())
	}
	want := []uint8{0, 255, 100}
	for x, w := range want {
		if got := s.Intensity(x, 0); got != w {
			t.Errorf("Intensity(%d, 0) = %d, want %d", x, got, w)
		}
	}
}

func TestIntensityGray16(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 1, 1))
	img.SetGray16(0, 0, color.Gray16{Y: 0x8000})

	if got := FromImage(img).Intensity(0, 0); got != 0x80 {
		t.Errorf("Intensity() = %d, want %d", got, 0x80)
	}
}

func TestSubImageOffset(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetGray(2, 2, color.Gray{Y: 0})

	sub := FromImage(img.SubImage(image.Rect(2, 2, 4, 4)))
	if sub.Width() != 2 || sub.Height() != 2 {
		t.Fatalf("Expected 2x2, got %dx%d", sub.Width(), sub.Height())
	}
	if sub.Intensity(0, 0) != 0 {
		t.Error("Expected sub-image origin to map to the dark pixel")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "frame1.png")
	f, err := os.Create(good)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 5, 2))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	s, err := Open(good)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.Width() != 5 || s.Height() != 2 {
		t.Errorf("Expected 5x2, got %dx%d", s.Width(), s.Height())
	}

	if _, err := Open(filepath.Join(dir, "frame2.png")); !errors.Is(err, types.ErrMissingFrame) {
		t.Errorf("Expected ErrMissingFrame, got %v", err)
	}

	bad := filepath.Join(dir, "frame3.png")
	os.WriteFile(bad, []byte("not a png"), 0644)
	_, err = Open(bad)
	if err == nil || errors.Is(err, types.ErrMissingFrame) {
		t.Errorf("Expected malformed frame error, got %v", err)
	}
}
