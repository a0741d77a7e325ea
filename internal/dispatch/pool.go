package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines created once and reused across
// dispatches. Submit hands a job to an idle worker; there is no queue beyond
// the workers themselves, so a full pool makes Submit wait.
type Pool struct {
	jobs   chan func()
	quit   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	size   int
	busy   atomic.Int32
	panics atomic.Uint64
}

// NewPool starts size workers. Sizes below 1 are raised to 1; a single worker
// runs backends one after another.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		jobs: make(chan func()),
		quit: make(chan struct{}),
		size: size,
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case job := <-p.jobs:
			p.run(job)
		}
	}
}

func (p *Pool) run(job func()) {
	p.busy.Add(1)
	defer p.busy.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
		}
	}()
	job()
}

// Submit blocks until a worker accepts job, ctx ends or the pool closes.
func (p *Pool) Submit(ctx context.Context, job func()) error {
	select {
	case <-p.quit:
		return ErrPoolClosed
	default:
	}
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.quit:
		return ErrPoolClosed
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Busy returns how many workers are running a job.
func (p *Pool) Busy() int { return int(p.busy.Load()) }

// Panics returns how many jobs panicked.
func (p *Pool) Panics() uint64 { return p.panics.Load() }

// Close stops accepting jobs and waits for running jobs to finish.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}
