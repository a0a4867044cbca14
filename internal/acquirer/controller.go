// internal/acquirer/controller.go
package acquirer

import (
	"errors"
	"sync"
)

// ErrWorkerRunning is returned by Start while a previous worker is alive.
var ErrWorkerRunning = errors.New("acquirer: worker still running")

// Controller serializes start/stop of at most one worker.
type Controller struct {
	mu     sync.Mutex
	worker *Worker
}

// Start launches a, unless a previous worker has not exited yet.
func (c *Controller) Start(a *Acquirer) (*Worker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.worker != nil {
		select {
		case <-c.worker.Done():
		default:
			return nil, ErrWorkerRunning
		}
	}
	c.worker = Start(a)
	return c.worker, nil
}

// Stop requests cancellation and joins the current worker.
// Returns the worker's result, or nil when nothing was running.
func (c *Controller) Stop() error {
	c.mu.Lock()
	w := c.worker
	c.mu.Unlock()

	if w == nil {
		return nil
	}
	w.Stop()
	return w.Wait()
}

// Running reports whether a worker is alive.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.worker == nil {
		return false
	}
	select {
	case <-c.worker.Done():
		return false
	default:
		return true
	}
}
