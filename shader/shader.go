package shader

// ────────────────────────────────── Desktop GL ──────────────────────────────────

const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
void main() {
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

// ────────────────────── Dynamic preamble / user code glue ──────────────────────

// The preamble declares the two values fed to every shader: the elapsed-time
// scalar and the resolution vector. User code sees nothing else.
const preamble = `#version 300 es
precision highp float;
precision highp int;

uniform float iTime;
uniform vec2  iResolution;

out vec4 fragColor;
`

const mainWrapper = `
void main(void)
{
    mainImage(fragColor, gl_FragCoord.xy);
}
`

// FallbackFragmentShader is the built-in magenta shader used when the watched
// file is missing or its source fails to build.
const FallbackFragmentShader = `void mainImage(out vec4 fragColor, in vec2 fragCoord)
{
    fragColor = vec4(1.0, 0.0, 1.0, 1.0);
}
`

// ────────────────────────────────── Public API ─────────────────────────────────

func GenerateVertexShader() string {
	return vertexShaderSourceGL
}

// GetFragmentShader combines the preamble, the user's mainImage code and the
// main wrapper into the full WebGL2 fragment source handed to the translator.
func GetFragmentShader(user string) string {
	return preamble + user + mainWrapper
}
