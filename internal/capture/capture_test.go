package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func fakeScreen(display int, rects []image.Rectangle) (*Screen, *[]image.Rectangle) {
	var captured []image.Rectangle
	s := NewScreen(display)
	s.numDisplays = func() int { return len(rects) }
	s.displayBounds = func(i int) image.Rectangle { return rects[i] }
	s.captureRect = func(r image.Rectangle) (*image.RGBA, error) {
		captured = append(captured, r)
		return image.NewRGBA(r), nil
	}
	s.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return s, &captured
}

func TestEncodePNGIsLossless(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 1, color.RGBA{B: 255, A: 255})

	data, err := EncodePNG(Frame{Image: img})
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png failed: %v", err)
	}
	if got := color.RGBAModel.Convert(decoded.At(0, 0)).(color.RGBA); got.R != 255 || got.B != 0 {
		t.Fatalf("unexpected pixel (0,0): %#v", got)
	}
	if got := color.RGBAModel.Convert(decoded.At(1, 1)).(color.RGBA); got.B != 255 || got.R != 0 {
		t.Fatalf("unexpected pixel (1,1): %#v", got)
	}
}

func TestEncodePNGRejectsEmptyFrame(t *testing.T) {
	if _, err := EncodePNG(Frame{}); err == nil {
		t.Fatal("expected error for frame without image")
	}
}

func TestScreenCapturesSelectedDisplay(t *testing.T) {
	rects := []image.Rectangle{image.Rect(0, 0, 100, 50), image.Rect(100, 0, 300, 80)}
	s, captured := fakeScreen(1, rects)

	frame, err := s.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if len(*captured) != 1 || (*captured)[0] != rects[1] {
		t.Fatalf("expected capture of display 1 bounds, got %v", *captured)
	}
	if frame.Image.Bounds() != rects[1] {
		t.Fatalf("unexpected frame bounds %v", frame.Image.Bounds())
	}
	if frame.CapturedAt.IsZero() {
		t.Fatal("expected capture timestamp")
	}
}

func TestScreenCapturesAllDisplays(t *testing.T) {
	rects := []image.Rectangle{image.Rect(0, 0, 100, 50), image.Rect(100, 0, 300, 80)}
	s, captured := fakeScreen(AllDisplays, rects)

	if _, err := s.Capture(context.Background()); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if want := image.Rect(0, 0, 300, 80); (*captured)[0] != want {
		t.Fatalf("expected union %v, got %v", want, (*captured)[0])
	}
}

func TestScreenDisplayOutOfRange(t *testing.T) {
	s, _ := fakeScreen(3, []image.Rectangle{image.Rect(0, 0, 10, 10)})

	_, err := s.Capture(context.Background())
	if !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("expected ErrNoDisplay, got %v", err)
	}
}

func TestScreenNoDisplays(t *testing.T) {
	s, _ := fakeScreen(0, nil)

	_, err := s.Capture(context.Background())
	if !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("expected ErrNoDisplay, got %v", err)
	}
}

func TestScreenCaptureError(t *testing.T) {
	s, _ := fakeScreen(0, []image.Rectangle{image.Rect(0, 0, 10, 10)})
	s.captureRect = func(image.Rectangle) (*image.RGBA, error) { return nil, errors.New("permission denied") }

	if _, err := s.Capture(context.Background()); err == nil {
		t.Fatal("expected capture error")
	}
}
