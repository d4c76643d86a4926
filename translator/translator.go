// Package translator holds the process-wide shader translator used to turn
// WebGL2 fragment shaders into the dialect of the current GL context.
package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// Get returns the shared translator, creating it on first use.
func Get() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, initErr
}

// Fragment is a translated fragment shader.
type Fragment struct {
	Code string

	// Source uniform name to the name it has in Code.
	Uniforms map[string]string
}

// TranslateFragment translates a WebGL2 fragment shader to GLSL 4.10, or to
// ESSL when gles is set.
func TranslateFragment(src string, gles bool) (*Fragment, error) {
	t, err := Get()
	if err != nil {
		return nil, fmt.Errorf("translator: %w", err)
	}

	format := gst.OutputFormatGLSL410
	if gles {
		format = gst.OutputFormatESSL
	}
	out, err := t.TranslateShader(src, "fragment", gst.ShaderSpecWebGL2, format)
	if err != nil {
		return nil, fmt.Errorf("translator: fragment shader: %w", err)
	}

	f := &Fragment{Code: out.Code, Uniforms: make(map[string]string, len(out.Variables))}
	for name, v := range out.Variables {
		f.Uniforms[name] = v.MappedName
	}
	return f, nil
}
