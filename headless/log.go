package headless

import "github.com/richinsley/goshaderdemo/log"

var logger = log.New("egl")
