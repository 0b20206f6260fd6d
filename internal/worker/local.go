package worker

import "context"

// Local runs tasks synchronously in the caller's goroutine
type Local struct {
	handler Handler
}

// NewLocal creates a synchronous submitter
func NewLocal(h Handler) *Local {
	return &Local{handler: h}
}

// Submit implements Submitter
func (l *Local) Submit(ctx context.Context, task Task) (Result, error) {
	if task.ID == "" {
		task.ID = NewTaskID()
	}
	return run(ctx, l.handler, task), nil
}
