// Package compute models CPU-bound work offload as an explicit capability
// with two implementations: a fixed worker pool and an inline fallback.
// Callers pick one at startup instead of probing a nullable global.
package compute

import (
	"context"
	"errors"
)

// ErrClosed is returned when work is submitted to a stopped pool.
var ErrClosed = errors.New("compute: pool closed")

// Offloader runs a CPU-bound task to completion. Run blocks until the task
// finishes or ctx is done.
type Offloader interface {
	Run(ctx context.Context, task func()) error
}

// Inline executes tasks on the calling goroutine. The documented degraded
// mode when no pool was configured.
type Inline struct{}

func (Inline) Run(_ context.Context, task func()) error {
	task()
	return nil
}

// Pool dispatches tasks to a fixed set of workers so heavy parsing cannot
// monopolize request-serving goroutines.
type Pool struct {
	tasks chan func()
	done  chan struct{}
}

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 4

// NewPool starts workers goroutines (DefaultWorkers if workers <= 0).
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	p := &Pool{
		tasks: make(chan func()),
		done:  make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for {
		select {
		case task := <-p.tasks:
			task()
		case <-p.done:
			return
		}
	}
}

func (p *Pool) Run(ctx context.Context, task func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		task()
	}
	select {
	case p.tasks <- wrapped:
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the workers. Tasks already started run to completion.
func (p *Pool) Close() {
	close(p.done)
}
