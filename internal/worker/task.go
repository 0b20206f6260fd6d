package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wonny/fundlens/backend/internal/contracts"
	"github.com/wonny/fundlens/backend/internal/fundconfig"
)

// Result statuses
const (
	StatusDone  = "done"
	StatusError = "error"
)

// ErrTaskFailed wraps every processing failure reported in a Result
var ErrTaskFailed = errors.New("worker task failed")

// Task is one unit of heavy work: parse + inject + score + cross-sectional tag
type Task struct {
	ID            string            `msgpack:"id" json:"id"`
	File          []byte            `msgpack:"file" json:"-"`
	Filename      string            `msgpack:"filename" json:"filename"`
	Config        fundconfig.Config `msgpack:"config" json:"config"`
	StrictColumns bool              `msgpack:"strict_columns" json:"strict_columns"`
}

// Result is the single response to a Task
type Result struct {
	TaskID  string           `msgpack:"task_id" json:"task_id"`
	Status  string           `msgpack:"status" json:"status"`
	Funds   []contracts.Fund `msgpack:"funds" json:"funds,omitempty"`
	Message string           `msgpack:"message" json:"message,omitempty"`
}

// Err converts an error result into an error
func (r Result) Err() error {
	if r.Status == StatusDone {
		return nil
	}
	if r.Message == "" {
		return ErrTaskFailed
	}
	return fmt.Errorf("%w: %s", ErrTaskFailed, r.Message)
}

// Handler performs the work of a task
type Handler func(ctx context.Context, task Task) ([]contracts.Fund, error)

// Submitter hands a task to a worker and waits for its result.
// The returned error reports transport failures; processing failures come back
// as a Result with StatusError. 취소는 결과를 버리는 것만 의미함 (작업 중단 없음)
type Submitter interface {
	Submit(ctx context.Context, task Task) (Result, error)
}

// NewTaskID returns a fresh task id
func NewTaskID() string {
	return uuid.NewString()
}

// run executes a handler and converts the outcome into a Result
func run(ctx context.Context, h Handler, task Task) (res Result) {
	res.TaskID = task.ID

	defer func() {
		if r := recover(); r != nil {
			res.Status = StatusError
			res.Funds = nil
			res.Message = "worker panic: " + panicMessage(r)
		}
	}()

	funds, err := h(ctx, task)
	if err != nil {
		res.Status = StatusError
		res.Message = err.Error()
		return res
	}

	res.Status = StatusDone
	res.Funds = funds
	return res
}

func panicMessage(r interface{}) string {
	switch v := r.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return "unknown panic"
	}
}
