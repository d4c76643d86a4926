package main

import (
	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goshaderdemo/driver"
	"github.com/richinsley/goshaderdemo/glfwcontext"
	"github.com/richinsley/goshaderdemo/graphics"
	"github.com/richinsley/goshaderdemo/headless"
	"github.com/richinsley/goshaderdemo/params"
	"github.com/richinsley/goshaderdemo/renderer"
	"github.com/richinsley/goshaderdemo/target"
)

// glStack bundles the graphics context, the GL backend and its render
// target. window is nil for EGL contexts.
type glStack struct {
	context  graphics.Context
	window   *glfwcontext.Context
	renderer *renderer.Renderer
	target   *renderer.Target
	visible  bool
}

func newContext(size params.IntPoint, egl, visible bool) (graphics.Context, *glfwcontext.Context, error) {
	if egl {
		ctx, err := headless.New(size)
		return ctx, nil, err
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		return nil, nil, err
	}
	win, err := glfwcontext.New(size, visible)
	if err != nil {
		glfwcontext.TerminateGraphics()
		return nil, nil, err
	}
	return win, win, nil
}

func newGLStack(size params.IntPoint, egl, visible bool) (*glStack, error) {
	ctx, win, err := newContext(size, egl, visible)
	if err != nil {
		return nil, err
	}
	g := &glStack{context: ctx, window: win, visible: visible && win != nil}

	if g.renderer, err = renderer.NewRenderer(ctx, size); err != nil {
		g.shutdown()
		return nil, err
	}
	if g.target, err = g.renderer.NewTarget(); err != nil {
		g.renderer.Release()
		g.shutdown()
		return nil, err
	}
	if target.Apply(g.renderer, g.renderer.BlitMaterial(), g.target) == 0 {
		logger.Warning("render target not bound to the screen")
	}
	return g, nil
}

// bindKeys maps P and C to one-shot pixel and simulation saves.
func (g *glStack) bindKeys(d *driver.Driver) {
	if g.window == nil {
		return
	}
	g.window.RegisterKeyCallback(glfw.KeyP, d.RequestPixelSave)
	g.window.RegisterKeyCallback(glfw.KeyC, d.RequestComputeSave)
}

func (g *glStack) shouldClose() bool {
	return g.visible && g.context.ShouldClose()
}

func (g *glStack) present() {
	if !g.visible {
		return
	}
	if err := g.renderer.Present(); err != nil {
		logger.Warningf("present failed: %v", err)
	}
}

func (g *glStack) shutdown() {
	g.context.Shutdown()
	if g.window != nil {
		glfwcontext.TerminateGraphics()
	}
}

// close releases the target and the context. The renderer itself belongs to
// the executor and must already be released.
func (g *glStack) close() {
	g.target.Release()
	g.shutdown()
}
