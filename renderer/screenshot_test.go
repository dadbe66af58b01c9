package renderer

import (
	"image/color"
	"testing"
)

func TestImageFromPixelsFlipsRows(t *testing.T) {
	const width, height = 2, 2

	// Bottom row red, top row green, as OpenGL would deliver them.
	red := []byte{255, 0, 0, 255}
	green := []byte{0, 255, 0, 255}
	pixels := make([]byte, 0, width*height*4)
	for i := 0; i < width; i++ {
		pixels = append(pixels, red...)
	}
	for i := 0; i < width; i++ {
		pixels = append(pixels, green...)
	}

	img := imageFromPixels(pixels, width, height)

	if got := img.Bounds(); got.Dx() != width || got.Dy() != height {
		t.Fatalf("bounds = %v, want %dx%d", got, width, height)
	}
	wantTop := color.NRGBA{G: 255, A: 255}
	wantBottom := color.NRGBA{R: 255, A: 255}
	if got := img.NRGBAAt(0, 0); got != wantTop {
		t.Errorf("top-left pixel = %v, want %v", got, wantTop)
	}
	if got := img.NRGBAAt(0, height-1); got != wantBottom {
		t.Errorf("bottom-left pixel = %v, want %v", got, wantBottom)
	}
}
