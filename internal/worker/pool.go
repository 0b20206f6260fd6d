package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/wonny/fundlens/backend/pkg/logger"
)

// ErrPoolClosed is returned when submitting to a stopped pool
var ErrPoolClosed = errors.New("worker pool is closed")

type job struct {
	ctx   context.Context
	task  Task
	reply chan Result
}

// Pool runs tasks on a fixed number of background goroutines
type Pool struct {
	handler Handler
	jobs    chan job
	size    int
	logger  *logger.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool creates and starts a pool of size goroutines
func NewPool(size int, h Handler, log *logger.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = logger.Nop()
	}

	p := &Pool{
		handler: h,
		jobs:    make(chan job),
		size:    size,
		logger:  log,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.loop(i)
	}

	p.logger.WithField("size", size).Info("Worker pool started")
	return p
}

func (p *Pool) loop(id int) {
	defer p.wg.Done()
	for j := range p.jobs {
		res := run(j.ctx, p.handler, j.task)
		j.reply <- res // buffered: never blocks even if the caller left

		p.logger.WithFields(map[string]interface{}{
			"worker":  id,
			"task_id": j.task.ID,
			"status":  res.Status,
		}).Debug("Task finished")
	}
}

// Submit implements Submitter
func (p *Pool) Submit(ctx context.Context, task Task) (Result, error) {
	if task.ID == "" {
		task.ID = NewTaskID()
	}
	j := job{ctx: context.WithoutCancel(ctx), task: task, reply: make(chan Result, 1)}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return Result{}, ErrPoolClosed
	}
	select {
	case p.jobs <- j:
		p.mu.RUnlock()
	case <-ctx.Done():
		p.mu.RUnlock()
		return Result{}, ctx.Err()
	}

	select {
	case res := <-j.reply:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Stop waits for running tasks and shuts the pool down
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}
