package renderer

import (
	"fmt"
	"log"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/zohnannor/shadertoy/encoder"
	"github.com/zohnannor/shadertoy/options"
)

// OffscreenRenderer is the FBO record mode renders into, with a fixed size
// independent of the (hidden) window.
type OffscreenRenderer struct {
	fbo       uint32
	textureID uint32
	width     int
	height    int
}

func NewOffscreenRenderer(width, height int) (*OffscreenRenderer, error) {
	or := &OffscreenRenderer{
		width:  width,
		height: height,
	}

	gl.GenFramebuffers(1, &or.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, or.fbo)
	gl.GenTextures(1, &or.textureID)
	gl.BindTexture(gl.TEXTURE_2D, or.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, or.textureID, 0)

	if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return nil, fmt.Errorf("offscreen fbo is not complete")
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	return or, nil
}

func (or *OffscreenRenderer) Destroy() {
	gl.DeleteFramebuffers(1, &or.fbo)
	gl.DeleteTextures(1, &or.textureID)
}

// ReadPixels returns the RGBA contents of the bound framebuffer, bottom row
// first as OpenGL delivers them.
func (or *OffscreenRenderer) ReadPixels() []byte {
	pixels := make([]byte, or.width*or.height*4)
	gl.ReadPixels(0, 0, int32(or.width), int32(or.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

// RunOffscreen is the record-mode loop: a Producer rendering a fixed number
// of frames on a deterministic clock and handing them to the encoder
// Consumer. Hot reload stays active while recording.
func (r *Renderer) RunOffscreen(opts *options.ShaderOptions, sources <-chan string) error {
	log.Println("Starting in record mode...")
	frameChan := make(chan *encoder.Frame, 3)
	encoderDoneChan := make(chan error, 1)

	enc := encoder.New(opts)
	go func() {
		encoderDoneChan <- enc.Run(frameChan)
	}()

	totalFrames := int(*opts.Duration * float64(*opts.FPS))
	timeStep := 1.0 / float64(*opts.FPS)

	for i := 0; i < totalFrames; i++ {
		select {
		case src := <-sources:
			if err := r.ApplySource(src); err != nil {
				log.Printf("Shader reload failed: %v", err)
			} else {
				log.Printf("Shader reloaded")
			}
		default:
		}

		u := &Uniforms{
			Time:       float32(float64(i) * timeStep),
			Resolution: [2]float32{float32(r.offscreen.width), float32(r.offscreen.height)},
		}

		gl.BindFramebuffer(gl.FRAMEBUFFER, r.offscreen.fbo)
		gl.Viewport(0, 0, int32(r.offscreen.width), int32(r.offscreen.height))
		gl.Clear(gl.COLOR_BUFFER_BIT)
		r.drawQuad(u)
		pixels := r.offscreen.ReadPixels()
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

		frameChan <- &encoder.Frame{Pixels: pixels, PTS: int64(i)}
	}

	close(frameChan)

	return <-encoderDoneChan
}
