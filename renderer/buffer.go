package renderer

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// Buffer manages two FBO/texture pairs holding the simulation field. The
// simulation pass reads the previous field and writes the other one.
type Buffer struct {
	fbo        [2]uint32
	textureID  [2]uint32
	readIndex  int // result of the previous pass
	writeIndex int // target of the next pass

	width  int
	height int
}

// NewBuffer creates both float textures and their framebuffers.
func NewBuffer(width, height int) (*Buffer, error) {
	b := &Buffer{
		readIndex:  0,
		writeIndex: 1,
		width:      width,
		height:     height,
	}

	for i := 0; i < 2; i++ {
		var fbo, texture uint32
		gl.GenTextures(1, &texture)
		gl.BindTexture(gl.TEXTURE_2D, texture)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

		gl.GenFramebuffers(1, &fbo)
		gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, texture, 0)

		b.fbo[i] = fbo
		b.textureID[i] = texture

		if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
			b.Destroy()
			return nil, fmt.Errorf("framebuffer %d for simulation buffer is not complete", i)
		}

		// start from an empty field
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return b, nil
}

// BindForWriting binds the current write FBO.
func (b *Buffer) BindForWriting() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, b.fbo[b.writeIndex])
}

// BindForReading binds the FBO holding the latest field as read framebuffer.
func (b *Buffer) BindForReading() {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, b.fbo[b.readIndex])
}

// SwapBuffers toggles the read/write indices after a pass wrote the buffer.
func (b *Buffer) SwapBuffers() {
	b.readIndex, b.writeIndex = b.writeIndex, b.readIndex
}

// TextureID returns the texture holding the latest field.
func (b *Buffer) TextureID() uint32 {
	return b.textureID[b.readIndex]
}

func (b *Buffer) Destroy() {
	gl.DeleteFramebuffers(2, &b.fbo[0])
	gl.DeleteTextures(2, &b.textureID[0])
	b.fbo = [2]uint32{}
	b.textureID = [2]uint32{}
}
