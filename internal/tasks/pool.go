package tasks

import (
	"sync"

	"watchlater/internal/shared"
)

// DefaultPoolSize is the worker count used when no explicit size is configured.
const DefaultPoolSize = 4

// Pool is a bounded worker pool. Work submitted to it runs on one of a
// fixed set of goroutines; the pool is shut down exactly once, after
// which submissions are rejected with shared.ErrPoolClosed.
type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool

	shutdown sync.Once
}

// NewPool creates a pool with the given number of workers, falling back
// to [DefaultPoolSize] when size is not positive.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}

	p := &Pool{jobs: make(chan func())}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// submit hands a job to a worker, blocking until one accepts it.
// The mutex serializes submission against shutdown so a job is never
// sent on a closed channel.
func (p *Pool) submit(job func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return shared.ErrPoolClosed
	}

	p.jobs <- job
	return nil
}

// Shutdown stops accepting work and waits for in-flight jobs to finish.
// Safe to call more than once; only the first call has any effect.
func (p *Pool) Shutdown() {
	p.shutdown.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()

		p.wg.Wait()
	})
}

// Future is the completion handle for a submitted operation.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Await blocks until the operation completes and returns its result.
// There is no cancellation: abandoning a future does not stop the work.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.value, f.err
}

// Done returns a channel closed when the result is available, for callers
// that multiplex over several futures.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Submit runs fn on the pool and returns a future resolving to its
// result. If the pool is already shut down the future resolves
// immediately with shared.ErrPoolClosed.
func Submit[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	err := p.submit(func() {
		f.value, f.err = fn()
		close(f.done)
	})
	if err != nil {
		f.err = err
		close(f.done)
	}

	return f
}
