// internal/acquirer/worker.go
package acquirer

import "sync/atomic"

// Worker is the handle to one running acquisition.
// Result is published once; Done is closed after it is set.
type Worker struct {
	stop atomic.Bool
	done chan struct{}
	err  error
}

// Start runs a on its own goroutine.
func Start(a *Acquirer) *Worker {
	w := &Worker{done: make(chan struct{})}
	go func() {
		w.err = a.Run(&w.stop)
		close(w.done)
	}()
	return w
}

// Stop requests cancellation. Observed at the next block boundary,
// so it may take up to one read timeout.
func (w *Worker) Stop() { w.stop.Store(true) }

// Done is closed when the session has ended.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Err returns the session result. Valid only after Done is closed.
func (w *Worker) Err() error {
	select {
	case <-w.done:
		return w.err
	default:
		return nil
	}
}

// Wait blocks until the session ends and returns its result.
func (w *Worker) Wait() error {
	<-w.done
	return w.err
}
