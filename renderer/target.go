package renderer

import (
	"fmt"
	"image"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goshaderdemo/params"
)

// Target is an 8-bit RGBA texture with its own framebuffer. Pixel passes
// render into it and materials sample it.
type Target struct {
	fbo       uint32
	textureID uint32
	size      params.IntPoint
	released  bool
}

// NewTarget allocates a render target. The GL context must be current.
func NewTarget(size params.IntPoint) (*Target, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("renderer: invalid target size %s", size)
	}

	t := &Target{size: size}
	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.GenTextures(1, &t.textureID)
	gl.BindTexture(gl.TEXTURE_2D, t.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(size.X), int32(size.Y), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.textureID, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.Release()
		return nil, fmt.Errorf("renderer: target framebuffer is not complete")
	}
	return t, nil
}

func (t *Target) Size() params.IntPoint {
	return t.size
}

func (t *Target) Valid() bool {
	return !t.released
}

// TextureID returns the GL texture backing the target.
func (t *Target) TextureID() uint32 {
	return t.textureID
}

// Release deletes the GL objects. The GL context must be current.
func (t *Target) Release() error {
	if t.released {
		return nil
	}
	t.released = true
	gl.DeleteFramebuffers(1, &t.fbo)
	gl.DeleteTextures(1, &t.textureID)
	return nil
}

// readRGBA reads the framebuffer currently bound for reading into an image,
// flipping rows so that y grows downwards.
func readRGBA(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	flipRows(img.Pix, img.Stride, height)
	return img
}

func flipRows(pix []byte, stride, height int) {
	row := make([]byte, stride)
	for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(row, a)
		copy(a, b)
		copy(b, row)
	}
}
