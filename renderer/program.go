package renderer

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goshaderdemo/shader"
	"github.com/richinsley/goshaderdemo/translator"
)

// renderPass is a linked program with its uniform locations looked up once.
// A location of -1 means the uniform was optimized out.
type renderPass struct {
	shaderProgram uint32
	resolutionLoc int32
	simTimeLoc    int32
	blendLoc      int32
	previousLoc   int32
	fieldLoc      int32
	startColorLoc int32
	endColorLoc   int32
}

// newRenderPass translates a WebGL2 fragment source and links it with the
// quad vertex shader.
func newRenderPass(fragmentSource string, gles bool) (*renderPass, error) {
	fs, err := translator.TranslateFragment(fragmentSource, gles)
	if err != nil {
		return nil, err
	}

	program, err := newProgram(shader.GenerateVertexShader(gles), fs.Code)
	if err != nil {
		return nil, err
	}

	loc := func(name string) int32 {
		mapped, ok := fs.Uniforms[name]
		if !ok {
			return -1
		}
		return gl.GetUniformLocation(program, gl.Str(mapped+"\x00"))
	}

	return &renderPass{
		shaderProgram: program,
		resolutionLoc: loc(shader.UniformResolution),
		simTimeLoc:    loc(shader.UniformSimTime),
		blendLoc:      loc(shader.UniformBlend),
		previousLoc:   loc(shader.UniformPrevious),
		fieldLoc:      loc(shader.UniformField),
		startColorLoc: loc(shader.UniformStartColor),
		endColorLoc:   loc(shader.UniformEndColor),
	}, nil
}

func (p *renderPass) destroy() {
	if p != nil && p.shaderProgram != 0 {
		gl.DeleteProgram(p.shaderProgram)
		p.shaderProgram = 0
	}
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
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", logText)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(sh, 1, csources, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(sh, logLength, nil, gl.Str(logText))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return sh, nil
}
