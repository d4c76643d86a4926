// Package renderer is the OpenGL implementation of the executor backend. All
// methods must be called on the goroutine that owns the GL context.
package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goshaderdemo/executor"
	"github.com/richinsley/goshaderdemo/graphics"
	"github.com/richinsley/goshaderdemo/log"
	"github.com/richinsley/goshaderdemo/params"
	"github.com/richinsley/goshaderdemo/shader"
)

var logger = log.New("renderer")

var glInitOnce sync.Once

var ErrReleased = errors.New("renderer: released")

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// Renderer runs the simulation and pixel passes on the GPU.
type Renderer struct {
	context    graphics.Context
	size       params.IntPoint
	quadVAO    uint32
	quadVBO    uint32
	simulation *renderPass
	pixel      *renderPass
	blit       *blitMaterial
	screen     *screenMesh
	field      *Buffer
	released   bool
}

// NewRenderer compiles both passes and allocates the simulation buffer for
// targets of the given size. It makes ctx current.
func NewRenderer(ctx graphics.Context, size params.IntPoint) (*Renderer, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("renderer: invalid size %s", size)
	}

	ctx.MakeCurrent()
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	logger.Infof("OpenGL %s", gl.GoStr(gl.GetString(gl.VERSION)))

	r := &Renderer{context: ctx, size: size, blit: &blitMaterial{}, screen: &screenMesh{}}
	if err := r.init(); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) init() error {
	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gles := r.context.IsGLES()
	var err error
	r.blit.program, err = newProgram(shader.GenerateVertexShader(gles), shader.GetBlitFragmentShader(gles))
	if err != nil {
		return fmt.Errorf("failed to create blit program: %w", err)
	}
	if r.simulation, err = newRenderPass(shader.SimulationShader(), gles); err != nil {
		return fmt.Errorf("failed to create simulation pass: %w", err)
	}
	if r.pixel, err = newRenderPass(shader.PixelShader(), gles); err != nil {
		return fmt.Errorf("failed to create pixel pass: %w", err)
	}
	if r.field, err = NewBuffer(r.size.X, r.size.Y); err != nil {
		return fmt.Errorf("failed to create simulation buffer: %w", err)
	}
	return nil
}

// NewTarget allocates a render target matching the renderer's size.
func (r *Renderer) NewTarget() (*Target, error) {
	return NewTarget(r.size)
}

func (r *Renderer) drawQuad() {
	gl.Viewport(0, 0, int32(r.size.X), int32(r.size.Y))
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func setColor(loc int32, c color.RGBA) {
	if loc != -1 {
		gl.Uniform4f(loc, float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255)
	}
}

// Compute runs the simulation pass into the buffer's write side and swaps.
func (r *Renderer) Compute(p executor.Pass) error {
	if r.released {
		return ErrReleased
	}

	pass := r.simulation
	r.field.BindForWriting()
	gl.UseProgram(pass.shaderProgram)
	if pass.resolutionLoc != -1 {
		gl.Uniform3f(pass.resolutionLoc, float32(r.size.X), float32(r.size.Y), 1)
	}
	if pass.simTimeLoc != -1 {
		gl.Uniform1f(pass.simTimeLoc, float32(p.SimTime))
	}
	if pass.blendLoc != -1 {
		gl.Uniform1f(pass.blendLoc, float32(p.Block.BlendFactor))
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.field.TextureID())
	if pass.previousLoc != -1 {
		gl.Uniform1i(pass.previousLoc, 0)
	}

	r.drawQuad()

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	r.field.SwapBuffers()
	return nil
}

func asTarget(rt params.RenderTarget) (*Target, error) {
	t, ok := rt.(*Target)
	if !ok {
		return nil, fmt.Errorf("renderer: unsupported render target %T", rt)
	}
	if !t.Valid() {
		return nil, executor.ErrInvalidTarget
	}
	return t, nil
}

// Pixel renders the gradient into target.
func (r *Renderer) Pixel(p executor.Pass, target params.RenderTarget) error {
	if r.released {
		return ErrReleased
	}
	t, err := asTarget(target)
	if err != nil {
		return err
	}

	pass := r.pixel
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.UseProgram(pass.shaderProgram)
	if pass.resolutionLoc != -1 {
		gl.Uniform3f(pass.resolutionLoc, float32(r.size.X), float32(r.size.Y), 1)
	}
	setColor(pass.startColorLoc, p.Block.StartColor)
	setColor(pass.endColorLoc, p.Block.EndColor)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.field.TextureID())
	if pass.fieldLoc != -1 {
		gl.Uniform1i(pass.fieldLoc, 0)
	}

	r.drawQuad()

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

// ReadCompute reads back the latest simulation field.
func (r *Renderer) ReadCompute() (image.Image, error) {
	if r.released {
		return nil, ErrReleased
	}
	r.field.BindForReading()
	img := readRGBA(r.size.X, r.size.Y)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return img, nil
}

// ReadPixel reads back target synchronously.
func (r *Renderer) ReadPixel(target params.RenderTarget) (image.Image, error) {
	if r.released {
		return nil, ErrReleased
	}
	t, err := asTarget(target)
	if err != nil {
		return nil, err
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.fbo)
	img := readRGBA(t.size.X, t.size.Y)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return img, nil
}

// Present blits the render target bound to the screen quad and swaps.
func (r *Renderer) Present() error {
	if r.released {
		return ErrReleased
	}
	if r.screen.bound == nil {
		return fmt.Errorf("renderer: no render target bound to the screen")
	}
	t, err := asTarget(r.screen.bound)
	if err != nil {
		return err
	}

	fbWidth, fbHeight := r.context.GetFramebufferSize()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(r.blit.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.textureID)
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.context.EndFrame()
	return nil
}

// Release deletes every GL object owned by the renderer. Targets are owned
// by their creator and are not released here.
func (r *Renderer) Release() error {
	if r.released {
		return nil
	}
	r.released = true

	r.simulation.destroy()
	r.pixel.destroy()
	if r.field != nil {
		r.field.Destroy()
	}
	if r.blit.program != 0 {
		gl.DeleteProgram(r.blit.program)
	}
	if r.quadVBO != 0 {
		gl.DeleteBuffers(1, &r.quadVBO)
	}
	if r.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &r.quadVAO)
	}
	logger.Debugf("released %s renderer", r.size)
	return nil
}

var _ executor.Backend = (*Renderer)(nil)
