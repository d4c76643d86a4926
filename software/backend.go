// Package software is a CPU implementation of the executor backend. It is
// slow but needs no GPU, which makes it usable headless and in tests.
package software

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/chewxy/math32"

	"github.com/richinsley/goshaderdemo/executor"
	"github.com/richinsley/goshaderdemo/log"
	"github.com/richinsley/goshaderdemo/params"
)

var logger = log.New("software")

var ErrReleased = errors.New("software: backend released")

const (
	waveFrequency = 6 * math32.Pi
	waveSpeed     = 0.7
)

// Backend keeps the simulation field in two buffers: Compute reads the
// current one and writes the other, then swaps them.
type Backend struct {
	mu       sync.Mutex
	size     params.IntPoint
	field    [2][]float32
	read     int
	released bool
}

// NewBackend allocates a backend for targets of the given size.
func NewBackend(size params.IntPoint) (*Backend, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("software: invalid size %s", size)
	}
	n := size.X * size.Y
	logger.Debugf("allocating %s simulation field", size)
	return &Backend{
		size:  size,
		field: [2][]float32{make([]float32, n), make([]float32, n)},
	}, nil
}

// wave is the target pattern of the simulation at time t, in [0,1].
func wave(u, v, t float32) float32 {
	w := math32.Sin(u*waveFrequency+t) * math32.Cos(v*waveFrequency-t*waveSpeed)
	return 0.5 + 0.5*w
}

// Compute blends the previous field towards the wave pattern at p.SimTime by
// p.Block.BlendFactor.
func (b *Backend) Compute(p executor.Pass) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return ErrReleased
	}

	blend := math32.Min(math32.Max(float32(p.Block.BlendFactor), 0), 1)
	t := float32(p.SimTime)
	src := b.field[b.read]
	dst := b.field[1-b.read]

	w, h := b.size.X, b.size.Y
	for y := 0; y < h; y++ {
		v := float32(y) / float32(h)
		for x := 0; x < w; x++ {
			i := y*w + x
			u := float32(x) / float32(w)
			dst[i] = src[i]*(1-blend) + wave(u, v, t)*blend
		}
	}
	b.read = 1 - b.read
	return nil
}

func lerp8(a, b uint8, t float32) float32 {
	return float32(a) + (float32(b)-float32(a))*t
}

// Pixel paints the start to end color diagonal gradient shaded by the
// simulation field.
func (b *Backend) Pixel(p executor.Pass, target params.RenderTarget) error {
	t, ok := target.(*Target)
	if !ok {
		return fmt.Errorf("software: unsupported render target %T", target)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return ErrReleased
	}
	if t.Size() != b.size {
		return fmt.Errorf("software: target is %s, backend is %s", t.Size(), b.size)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.img == nil {
		return executor.ErrInvalidTarget
	}

	start, end := p.Block.StartColor, p.Block.EndColor
	field := b.field[b.read]
	w, h := b.size.X, b.size.Y
	span := float32(w + h - 2)
	if span <= 0 {
		span = 1
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := float32(x+y) / span
			shade := 0.5 + 0.5*field[y*w+x]
			t.img.SetRGBA(x, y, color.RGBA{
				R: uint8(lerp8(start.R, end.R, g) * shade),
				G: uint8(lerp8(start.G, end.G, g) * shade),
				B: uint8(lerp8(start.B, end.B, g) * shade),
				A: uint8(lerp8(start.A, end.A, g)),
			})
		}
	}
	return nil
}

// ReadCompute returns the current simulation field as a grayscale image.
func (b *Backend) ReadCompute() (image.Image, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return nil, ErrReleased
	}

	img := image.NewGray(image.Rect(0, 0, b.size.X, b.size.Y))
	for i, v := range b.field[b.read] {
		img.Pix[i] = uint8(math32.Round(v * 255))
	}
	return img, nil
}

// ReadPixel returns a copy of target.
func (b *Backend) ReadPixel(target params.RenderTarget) (image.Image, error) {
	t, ok := target.(*Target)
	if !ok {
		return nil, fmt.Errorf("software: unsupported render target %T", target)
	}
	img := t.Snapshot()
	if img == nil {
		return nil, executor.ErrInvalidTarget
	}
	return img, nil
}

// Field returns a copy of the current simulation field.
func (b *Backend) Field() []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]float32(nil), b.field[b.read]...)
}

func (b *Backend) Release() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return nil
	}
	b.released = true
	b.field = [2][]float32{}
	logger.Debugf("released %s simulation field", b.size)
	return nil
}

var _ executor.Backend = (*Backend)(nil)
