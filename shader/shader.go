// Package shader holds the GLSL sources of the demo: a full-screen quad
// vertex shader, a blit shader for presenting targets, and the simulation
// and pixel passes. The two passes are written for WebGL2 and translated to
// the context's dialect at load time.
package shader

// ────────────────────────────────── Desktop GL ──────────────────────────────────

const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const blitFragmentShaderSourceGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// ──────────────────────────────────── GLES ──────────────────────────────────────

const vertexShaderSourceGLES = `#version 300 es
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const blitFragmentShaderSourceGLES = `#version 300 es
precision mediump float;
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// ──────────────────────────────── WebGL2 passes ─────────────────────────────────

// Uniform names shared between the pass sources and the renderer.
const (
	UniformResolution = "uResolution"
	UniformSimTime    = "uSimTime"
	UniformBlend      = "uBlend"
	UniformPrevious   = "uPrevious"
	UniformField      = "uField"
	UniformStartColor = "uStartColor"
	UniformEndColor   = "uEndColor"
)

const preamble = `#version 300 es
precision highp float;
precision highp int;

uniform vec3 uResolution;
out vec4 fragColor;
`

// The simulation field lives in the red channel. Each pass moves the
// previous field towards an animated wave pattern by uBlend.
const simulationSource = preamble + `
uniform float     uSimTime;
uniform float     uBlend;
uniform sampler2D uPrevious;

const float PI = 3.14159265;

float wave(vec2 uv, float t) {
    float w = sin(uv.x * 6.0 * PI + t) * cos(uv.y * 6.0 * PI - t * 0.7);
    return 0.5 + 0.5 * w;
}

void main() {
    vec2 uv = gl_FragCoord.xy / uResolution.xy;
    float prev = texture(uPrevious, uv).r;
    float next = mix(prev, wave(uv, uSimTime), clamp(uBlend, 0.0, 1.0));
    fragColor = vec4(next, next, next, 1.0);
}
`

// The pixel pass paints a diagonal gradient between the two colors, shaded
// by the simulation field.
const pixelSource = preamble + `
uniform vec4      uStartColor;
uniform vec4      uEndColor;
uniform sampler2D uField;

void main() {
    vec2 uv = gl_FragCoord.xy / uResolution.xy;
    float g = clamp((uv.x + uv.y) * 0.5, 0.0, 1.0);
    vec4 base = mix(uStartColor, uEndColor, g);
    float shade = 0.5 + 0.5 * texture(uField, uv).r;
    fragColor = vec4(base.rgb * shade, base.a);
}
`

// ────────────────────────────────── Public API ─────────────────────────────────

func GenerateVertexShader(isGLES bool) string {
	if isGLES {
		return vertexShaderSourceGLES
	}
	return vertexShaderSourceGL
}

func GetBlitFragmentShader(isGLES bool) string {
	if isGLES {
		return blitFragmentShaderSourceGLES
	}
	return blitFragmentShaderSourceGL
}

// SimulationShader returns the WebGL2 source of the simulation pass.
func SimulationShader() string {
	return simulationSource
}

// PixelShader returns the WebGL2 source of the pixel pass.
func PixelShader() string {
	return pixelSource
}
