package executor

import (
	"sync"
)

// Executor runs submitted tasks on a fixed number of goroutines.
//
// When every goroutine is busy, Execute runs the task on the caller's goroutine instead of queueing it. The zero value
// runs every task on the caller's goroutine.
type Executor struct {
	inputs chan func()
	wg     sync.WaitGroup

	// mu guards closed.
	mu     sync.Mutex
	closed bool
}

// New returns a new Executor with n goroutines. If n is not positive, tasks always run on the caller's goroutine.
func New(n int) *Executor {
	ex := &Executor{}
	if n <= 0 {
		return ex
	}

	ex.inputs = make(chan func())
	for range n {
		go func() {
			for f := range ex.inputs {
				f()
			}
		}()
	}

	return ex
}

// Execute executes the given task.
//
// Execute must not be called after Close.
func (ex *Executor) Execute(f func()) {
	ex.wg.Add(1)
	task := func() {
		defer ex.wg.Done()
		f()
	}

	if ex.inputs == nil {
		task()
		return
	}

	select {
	case ex.inputs <- task:
	default:
		task()
	}
}

// Close waits for every submitted task to complete then stops the goroutines. Subsequent calls are no-ops.
func (ex *Executor) Close() error {
	ex.wg.Wait()

	ex.mu.Lock()
	defer ex.mu.Unlock()
	if !ex.closed && ex.inputs != nil {
		close(ex.inputs)
	}
	ex.closed = true

	return nil
}
