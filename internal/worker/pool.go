// Package worker runs independent report syntheses concurrently.
package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type task struct {
	index int
	job   Job
}

type indexed struct {
	index  int
	result Result
}

// Pool runs jobs on a fixed number of goroutines and returns results in
// submission order. Submit must not be called after Wait.
type Pool struct {
	workers int
	tasks   chan task
	results chan indexed
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	submitted int
	collected map[int]Result
	done      chan struct{}
	closeOnce sync.Once
}

// NewPool creates a pool bound to ctx; cancelling ctx stops the workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:   workers,
		tasks:     make(chan task, workers*2),
		results:   make(chan indexed, workers*2),
		ctx:       ctx,
		cancel:    cancel,
		collected: make(map[int]Result),
		done:      make(chan struct{}),
	}
}

// Start launches the workers and the result collector
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			r := t.job.Execute(p.ctx)
			select {
			case p.results <- indexed{index: t.index, result: r}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// collect drains results as they arrive so workers never block on a
// caller that has not reached Wait yet
func (p *Pool) collect() {
	defer close(p.done)
	for r := range p.results {
		p.mu.Lock()
		p.collected[r.index] = r.result
		p.mu.Unlock()
	}
}

// Submit queues a job. It returns false once the pool is cancelled.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	index := p.submitted
	p.submitted++
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		return false
	case p.tasks <- task{index: index, job: job}:
		return true
	}
}

// Wait stops accepting jobs, waits for the queued ones and returns their
// results in submission order. Jobs dropped by cancellation leave nil slots.
func (p *Pool) Wait() []Result {
	p.stop()
	<-p.done
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Result, p.submitted)
	for i, r := range p.collected {
		out[i] = r
	}
	return out
}

// Shutdown cancels in-flight jobs and waits for the workers to exit
func (p *Pool) Shutdown() {
	p.cancel()
	p.stop()
	<-p.done
}

func (p *Pool) stop() {
	p.closeOnce.Do(func() {
		close(p.tasks)
		p.wg.Wait()
		close(p.results)
	})
}
