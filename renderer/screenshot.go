package renderer

import (
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// imageFromPixels wraps raw RGBA framebuffer data, bottom row first, into an
// image with the usual top-down row order.
func imageFromPixels(pixels []byte, width, height int) *image.NRGBA {
	img := &image.NRGBA{
		Pix:    pixels,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	return imaging.FlipV(img)
}

func (r *Renderer) captureScreenshot(width, height int) (string, error) {
	pixels := make([]byte, width*height*4)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	path := fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405"))
	if err := imaging.Save(imageFromPixels(pixels, width, height), path); err != nil {
		return "", fmt.Errorf("failed to save screenshot: %w", err)
	}
	return path, nil
}
