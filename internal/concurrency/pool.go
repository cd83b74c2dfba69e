// File: internal/concurrency/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker pool executing blocking tasks off the loop thread. Tasks land in
// lock-free per-worker queues with a buffered global channel as overflow;
// completion signaling back to the loop is the dispatcher's concern, not the
// pool's.

package concurrency

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ErrPoolClosed indicates the pool has been shut down.
var ErrPoolClosed = errors.New("worker pool is closed")

// Task is one unit of blocking work.
type Task func()

// Pool manages a fixed set of worker goroutines.
type Pool struct {
	globalQueue chan Task
	localQueues []*MPMCQueue[Task]
	closeCh     chan struct{}
	closed      atomic.Bool
	next        atomic.Uint64
	wg          sync.WaitGroup
}

// NewPool starts size workers; size <= 0 means one per CPU.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		globalQueue: make(chan Task, size*4),
		localQueues: make([]*MPMCQueue[Task], size),
		closeCh:     make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		p.localQueues[i] = NewMPMCQueue[Task](1024)
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker(i)
	}
	return p
}

// Submit enqueues a task. Returns ErrPoolClosed after Close.
func (p *Pool) Submit(task Task) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	idx := int(p.next.Add(1)) % len(p.localQueues)
	if p.localQueues[idx].Enqueue(task) {
		return nil
	}
	select {
	case p.globalQueue <- task:
		return nil
	case <-p.closeCh:
		return ErrPoolClosed
	}
}

// NumWorkers returns the pool size.
func (p *Pool) NumWorkers() int {
	return len(p.localQueues)
}

// Close stops accepting work and waits for workers to drain.
func (p *Pool) Close() {
	if p.closed.CompareAndSwap(false, true) {
		close(p.closeCh)
		p.wg.Wait()
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	local := p.localQueues[id]
	for {
		if task, ok := local.Dequeue(); ok {
			p.safeExecute(task)
			continue
		}
		select {
		case task := <-p.globalQueue:
			p.safeExecute(task)
		case <-p.closeCh:
			// Drain what is left so submitted completions still fire.
			for {
				if task, ok := local.Dequeue(); ok {
					p.safeExecute(task)
					continue
				}
				select {
				case task := <-p.globalQueue:
					p.safeExecute(task)
				default:
					return
				}
			}
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func (p *Pool) safeExecute(task Task) {
	defer func() { _ = recover() }()
	task()
}
