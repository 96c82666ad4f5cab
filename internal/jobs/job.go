/**
 * @description
 * Background job contract and execution loop.
 * A Job is a named unit of recurring work with a fixed interval. Runner owns
 * one job's lifecycle: start, the execute/sleep loop, and a graceful stop that
 * joins the loop goroutine. A failing cycle is logged and never ends the loop.
 *
 * @dependencies
 * - standard "context", "sync", "time"
 * - backend/internal/logger
 */

package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/goldpulse/backend/internal/logger"
)

// Job is a unit of recurring background work
type Job interface {
	Name() string
	Interval() time.Duration
	Execute(ctx context.Context) error
}

// Runner drives one Job: Stopped -> Running -> Stopped
type Runner struct {
	job Job

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewRunner(job Job) *Runner {
	return &Runner{job: job}
}

// Start launches the execution loop. Calling Start on a running job is a
// logged no-op; there is never more than one loop per job.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		logger.Warn("%s is already running", r.job.Name())
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.running = true

	r.wg.Add(1)
	go r.run(ctx)

	logger.Info("Started %s (interval %s)", r.job.Name(), r.job.Interval())
}

// Stop cancels the in-flight wait or execution and blocks until the loop has
// fully exited. Calling Stop on a stopped job is a no-op.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.mu.Unlock()

	r.wg.Wait()

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	logger.Info("Stopped %s", r.job.Name())
}

// Running reports whether the execution loop is active
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// run executes the job, then sleeps for the interval measured from the end of
// the previous cycle, so executions never overlap. Cancellation interrupts
// the sleep immediately.
func (r *Runner) run(ctx context.Context) {
	defer r.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		if err := r.job.Execute(ctx); err != nil {
			logger.Error("Error in %s: %v", r.job.Name(), err)
		}

		timer := time.NewTimer(r.job.Interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
