package executor

import "errors"

var (
	ErrInvalidSize   = errors.New("executor: invalid render target size")
	ErrNoBackend     = errors.New("executor: no render backend")
	ErrInvalidTarget = errors.New("executor: render target unavailable")
	ErrClosed        = errors.New("executor: closed")
	ErrNoParameters  = errors.New("executor: no parameters published yet")
)
