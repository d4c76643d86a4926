package executor

import (
	"fmt"
	"strings"
)

// Mode selects how an executor is fed. It is fixed when the executor is
// created; New returns a different concrete type for each mode so a caller
// can never switch modes on a live executor.
type Mode int

const (
	// ModeContinuous executors render from their own render-loop callback and
	// only take parameter updates from the frame driver.
	ModeContinuous Mode = iota

	// ModeOnDemand executors render exactly when Draw is called.
	ModeOnDemand
)

// String returns the mode name as used in config files and flags.
func (m Mode) String() string {
	switch m {
	case ModeContinuous:
		return "continuous"
	case ModeOnDemand:
		return "on-demand"
	default:
		return "unknown"
	}
}

// ParseMode converts a config/flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continuous", "every-frame":
		return ModeContinuous, nil
	case "on-demand", "ondemand", "draw":
		return ModeOnDemand, nil
	default:
		return 0, fmt.Errorf("executor: unknown mode %q", s)
	}
}

// ModeFromFlag maps the render-every-frame flag of the demo character onto a
// Mode.
func ModeFromFlag(renderEveryFrame bool) Mode {
	if renderEveryFrame {
		return ModeContinuous
	}
	return ModeOnDemand
}
