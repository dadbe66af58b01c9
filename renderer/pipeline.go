package renderer

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	gst "github.com/richinsley/goshadertranslator"

	"github.com/zohnannor/shadertoy/shader"
	xlate "github.com/zohnannor/shadertoy/translator"
)

// Pipeline is a linked shader program together with the uniform locations
// updated every frame.
type Pipeline struct {
	program       uint32
	timeLoc       int32
	resolutionLoc int32
}

// compilePipeline builds a Pipeline from the user's fragment source: compose
// the full shader, translate the WebGL2 dialect to desktop GLSL, compile and
// link. Any failure returns an error carrying the translator or driver
// diagnostic and leaves no GL objects behind.
func compilePipeline(userSource string) (*Pipeline, error) {
	translator, err := xlate.Get()
	if err != nil {
		return nil, fmt.Errorf("shader translator unavailable: %w", err)
	}

	fullFragmentSource := shader.GetFragmentShader(userSource)
	fsShader, err := translator.TranslateShader(fullFragmentSource, "fragment", gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}

	program, err := newProgram(shader.GenerateVertexShader(), fsShader.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	p := &Pipeline{program: program}
	gl.UseProgram(program)
	p.timeLoc = uniformLocation(fsShader.Variables, program, "iTime")
	p.resolutionLoc = uniformLocation(fsShader.Variables, program, "iResolution")

	return p, nil
}

func destroyPipeline(p *Pipeline) {
	gl.DeleteProgram(p.program)
}

// uniformLocation resolves a uniform through the MappedName assigned by the
// translator. A shader that never reads a uniform yields -1, which the render
// loop skips.
func uniformLocation(uniformMap map[string]gst.ShaderVariable, program uint32, name string) int32 {
	v, ok := uniformMap[name]
	if !ok {
		return -1
	}
	return gl.GetUniformLocation(program, gl.Str(v.MappedName+"\x00"))
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteShader(vertexShader)
		gl.DeleteShader(fragmentShader)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
