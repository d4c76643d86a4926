package executor

import "github.com/richinsley/goshaderdemo/params"

// OnDemand is an executor that renders only when asked to.
type OnDemand struct {
	core
}

// NewOnDemand creates an on-demand executor rendering at size.
func NewOnDemand(backend Backend, size params.IntPoint, opts Options) (*OnDemand, error) {
	o := &OnDemand{}
	if err := o.init(ModeOnDemand, backend, size, opts); err != nil {
		return nil, err
	}
	return o, nil
}

// Draw synchronously renders one frame using exactly b and applies its save
// requests once.
//
// Each call costs a full compute and pixel pass. Calling Draw on every tick
// is allowed but wasteful; callers that want a frame every tick should use a
// Continuous executor instead.
func (o *OnDemand) Draw(b params.Block) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stats.Draws++
	return o.render(b, true)
}

// Stats returns a snapshot of the executor counters.
func (o *OnDemand) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}
