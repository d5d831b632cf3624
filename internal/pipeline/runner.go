package pipeline

import (
	"context"
	"sync"

	"lowcap-signals/internal/domain"
)

// DefaultWorkers is the default size of the processing pool.
const DefaultWorkers = 4

// Runner drains a message channel through a bounded worker pool. Each
// worker processes one message at a time; messages are independent so no
// ordering is preserved across workers.
type Runner struct {
	pipeline *Pipeline
	workers  int
}

// NewRunner creates a Runner with the given pool size. A non-positive
// size falls back to DefaultWorkers.
func NewRunner(p *Pipeline, workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{pipeline: p, workers: workers}
}

// Run consumes messages until the channel is closed or the context is
// cancelled, then waits for in-flight messages to finish.
func (r *Runner) Run(ctx context.Context, messages <-chan domain.RawMessage) {
	var wg sync.WaitGroup
	wg.Add(r.workers)

	for i := 0; i < r.workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-messages:
					if !ok {
						return
					}
					r.pipeline.Process(ctx, msg)
				}
			}
		}()
	}

	wg.Wait()
}
