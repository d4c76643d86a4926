//go:build !linux

package headless

import (
	"errors"

	"github.com/richinsley/goshaderdemo/graphics"
	"github.com/richinsley/goshaderdemo/params"
)

// New is only available on Linux.
func New(size params.IntPoint) (graphics.Context, error) {
	return nil, errors.New("headless: EGL rendering is not supported on this platform")
}
