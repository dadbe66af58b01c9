package renderer

import (
	"fmt"
	"log"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/zohnannor/shadertoy/graphics"
	"github.com/zohnannor/shadertoy/shader"
)

var glInitOnce sync.Once

// Uniforms mirrors the values fed to the shader every frame: a 4-byte
// elapsed-time scalar and an 8-byte two-component resolution vector.
type Uniforms struct {
	Time       float32
	Resolution [2]float32
}

type Renderer struct {
	context    graphics.Context
	quadVAO    uint32
	quadVBO    uint32
	slot       *pipelineSlot
	offscreen  *OffscreenRenderer
	width      int
	height     int
	recordMode bool

	// Clock state. Touched only on the render thread: key callbacks run
	// inside PollEvents on the same thread as the loop.
	clockStart float64
	paused     bool
	pausedAt   float64

	screenshotRequested bool
}

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

func NewRenderer(width, height int, recordMode bool, ctx graphics.Context) (*Renderer, error) {
	r := &Renderer{
		width:      width,
		height:     height,
		recordMode: recordMode,
		context:    ctx,
		slot:       newPipelineSlot(),
	}

	r.context.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	if recordMode {
		var err error
		r.offscreen, err = NewOffscreenRenderer(width, height)
		if err != nil {
			return nil, fmt.Errorf("failed to create offscreen renderer: %w", err)
		}
	}

	return r, nil
}

func (r *Renderer) Shutdown() {
	if r.slot.current != nil {
		destroyPipeline(r.slot.current)
		r.slot.current = nil
	}
	if r.offscreen != nil {
		r.offscreen.Destroy()
	}
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.quadVAO)
}

// LoadInitial builds the first pipeline. An empty or broken source falls back
// to the embedded magenta shader, which always builds.
func (r *Renderer) LoadInitial(userSource string) error {
	if userSource != "" {
		if err := r.slot.Replace(userSource); err == nil {
			log.Printf("Loaded fragment shader from file (%d chars)", len(userSource))
			r.RestartClock()
			return nil
		} else {
			log.Printf("Initial shader failed to build, using fallback: %v", err)
		}
	} else {
		log.Printf("Using the fallback fragment shader")
	}

	if err := r.slot.Replace(shader.FallbackFragmentShader); err != nil {
		return fmt.Errorf("failed to build the fallback pipeline: %w", err)
	}
	r.RestartClock()
	return nil
}

// ApplySource rebuilds the pipeline from new shader source. On failure the
// current pipeline keeps rendering; on success the elapsed-time clock
// restarts so the new shader begins at t=0.
func (r *Renderer) ApplySource(userSource string) error {
	if err := r.slot.Replace(userSource); err != nil {
		return err
	}
	r.RestartClock()
	return nil
}

// RestartClock rewinds the elapsed-time uniform to zero.
func (r *Renderer) RestartClock() {
	r.clockStart = r.context.Time()
	r.pausedAt = 0
}

// TogglePause freezes or resumes the elapsed-time uniform.
func (r *Renderer) TogglePause() {
	if r.paused {
		r.clockStart = r.context.Time() - r.pausedAt
	} else {
		r.pausedAt = r.context.Time() - r.clockStart
	}
	r.paused = !r.paused
}

// RequestScreenshot saves the next rendered frame to a PNG file.
func (r *Renderer) RequestScreenshot() {
	r.screenshotRequested = true
}

func (r *Renderer) elapsed() float64 {
	if r.paused {
		return r.pausedAt
	}
	return r.context.Time() - r.clockStart
}

// drawQuad renders the fullscreen quad with the current pipeline and the
// given uniform values.
func (r *Renderer) drawQuad(u *Uniforms) {
	p := r.slot.current
	if p == nil {
		return
	}
	gl.UseProgram(p.program)
	if p.timeLoc != -1 {
		gl.Uniform1f(p.timeLoc, u.Time)
	}
	if p.resolutionLoc != -1 {
		gl.Uniform2f(p.resolutionLoc, u.Resolution[0], u.Resolution[1])
	}
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// Run is the interactive render loop. Shader source arriving on sources is
// applied between frames; a failed rebuild is logged and the previous
// pipeline keeps drawing.
func (r *Renderer) Run(sources <-chan string) {
	r.RestartClock()

	for !r.context.ShouldClose() {
		select {
		case src, ok := <-sources:
			if !ok {
				sources = nil
				break
			}
			if err := r.ApplySource(src); err != nil {
				log.Printf("Shader reload failed: %v", err)
			} else {
				log.Printf("Shader reloaded")
			}
		default:
		}

		fbWidth, fbHeight := r.context.GetFramebufferSize()
		u := &Uniforms{
			Time:       float32(r.elapsed()),
			Resolution: [2]float32{float32(fbWidth), float32(fbHeight)},
		}

		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		gl.Clear(gl.COLOR_BUFFER_BIT)
		r.drawQuad(u)

		if r.screenshotRequested {
			r.screenshotRequested = false
			if path, err := r.captureScreenshot(fbWidth, fbHeight); err != nil {
				log.Printf("Screenshot failed: %v", err)
			} else {
				log.Printf("Screenshot saved to %s", path)
			}
		}

		r.context.EndFrame()
	}
}
