package executor

// Stats are the running counters of an executor.
type Stats struct {
	// Calls of UpdateParameters (continuous) and Draw (on-demand).
	Updates int64
	Draws   int64

	// Completed renders, and how many of them reused already consumed
	// parameters.
	Frames      int64
	StaleFrames int64

	ComputeSaves int64
	PixelSaves   int64

	// Save requests that were dropped (no saver, readback or write failure).
	SaveFailures int64

	// Calls rejected because the block's target or size was unusable.
	InvalidTargets int64

	SimTime float64
}
