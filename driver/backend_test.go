package driver

import (
	"image"

	"github.com/richinsley/goshaderdemo/executor"
	"github.com/richinsley/goshaderdemo/params"
)

type countingBackend struct {
	computes int
}

func (b *countingBackend) Compute(executor.Pass) error { b.computes++; return nil }

func (b *countingBackend) Pixel(executor.Pass, params.RenderTarget) error { return nil }

func (b *countingBackend) ReadCompute() (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func (b *countingBackend) ReadPixel(params.RenderTarget) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func (b *countingBackend) Release() error { return nil }
