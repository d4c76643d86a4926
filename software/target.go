package software

import (
	"image"
	"sync"

	"github.com/richinsley/goshaderdemo/params"
)

// Target is an in-memory render target.
type Target struct {
	mu       sync.RWMutex
	size     params.IntPoint
	img      *image.RGBA
	released bool
}

// NewTarget allocates a target of the given size.
func NewTarget(size params.IntPoint) *Target {
	return &Target{
		size: size,
		img:  image.NewRGBA(image.Rect(0, 0, size.X, size.Y)),
	}
}

func (t *Target) Size() params.IntPoint {
	return t.size
}

func (t *Target) Valid() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.released && t.img != nil
}

// Snapshot returns a copy of the target's pixels.
func (t *Target) Snapshot() *image.RGBA {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.img == nil {
		return nil
	}
	out := image.NewRGBA(t.img.Rect)
	copy(out.Pix, t.img.Pix)
	return out
}

// Release frees the pixel buffer. The target is invalid afterwards.
func (t *Target) Release() error {
	t.mu.Lock()
	t.released = true
	t.img = nil
	t.mu.Unlock()
	return nil
}
