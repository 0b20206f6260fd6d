package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/wonny/fundlens/backend/pkg/logger"
	"github.com/wonny/fundlens/backend/pkg/redis"
)

// ErrTimeout is returned when no worker replied in time
var ErrTimeout = errors.New("worker did not reply in time")

// replyTTL bounds how long an unclaimed reply stays in Redis
const replyTTL = 10 * time.Minute

func replyKey(queue, taskID string) string {
	return fmt.Sprintf("%s:reply:%s", queue, taskID)
}

// RedisQueue submits tasks to worker processes over a Redis list.
// Payloads are msgpack encoded; each task gets its own reply key.
type RedisQueue struct {
	client  *redis.Client
	queue   string
	timeout time.Duration
	logger  *logger.Logger
}

// NewRedisQueue creates a cross-process submitter
func NewRedisQueue(client *redis.Client, queue string, timeout time.Duration, log *logger.Logger) *RedisQueue {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisQueue{
		client:  client,
		queue:   queue,
		timeout: timeout,
		logger:  log,
	}
}

// Submit implements Submitter
func (q *RedisQueue) Submit(ctx context.Context, task Task) (Result, error) {
	if !q.client.Enabled() {
		return Result{}, fmt.Errorf("redis queue requires redis")
	}
	if task.ID == "" {
		task.ID = NewTaskID()
	}

	payload, err := msgpack.Marshal(&task)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode task: %w", err)
	}

	rdb := q.client.Redis()
	if err := rdb.RPush(ctx, q.queue, payload).Err(); err != nil {
		return Result{}, fmt.Errorf("failed to enqueue task: %w", err)
	}

	q.logger.WithFields(map[string]interface{}{
		"task_id":  task.ID,
		"filename": task.Filename,
		"bytes":    len(task.File),
	}).Info("Task enqueued")

	reply, err := rdb.BLPop(ctx, q.timeout, replyKey(q.queue, task.ID)).Result()
	if errors.Is(err, goredis.Nil) {
		return Result{}, fmt.Errorf("%w: task %s", ErrTimeout, task.ID)
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to wait for reply: %w", err)
	}

	var res Result
	if err := msgpack.Unmarshal([]byte(reply[1]), &res); err != nil {
		return Result{}, fmt.Errorf("failed to decode result: %w", err)
	}
	return res, nil
}

// Consumer is the worker-process side of RedisQueue
type Consumer struct {
	client  *redis.Client
	queue   string
	handler Handler
	poll    time.Duration
	logger  *logger.Logger
}

// NewConsumer creates a queue consumer
func NewConsumer(client *redis.Client, queue string, h Handler, log *logger.Logger) *Consumer {
	if log == nil {
		log = logger.Nop()
	}
	return &Consumer{
		client:  client,
		queue:   queue,
		handler: h,
		poll:    time.Second,
		logger:  log,
	}
}

// Run processes tasks until ctx is cancelled
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.WithField("queue", c.queue).Info("Worker consumer started")

	for {
		if err := ctx.Err(); err != nil {
			c.logger.Info("Worker consumer stopped")
			return nil
		}

		if _, err := c.ProcessOne(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.logger.WithError(err).Warn("Failed to process task")
			time.Sleep(c.poll)
		}
	}
}

// ProcessOne waits up to one poll interval for a task and handles it.
// Returns false when no task arrived.
func (c *Consumer) ProcessOne(ctx context.Context) (bool, error) {
	rdb := c.client.Redis()

	item, err := rdb.BLPop(ctx, c.poll, c.queue).Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to pop task: %w", err)
	}

	var task Task
	if err := msgpack.Unmarshal([]byte(item[1]), &task); err != nil {
		return true, fmt.Errorf("failed to decode task: %w", err)
	}

	start := time.Now()
	res := run(ctx, c.handler, task)

	payload, err := msgpack.Marshal(&res)
	if err != nil {
		return true, fmt.Errorf("failed to encode result: %w", err)
	}

	key := replyKey(c.queue, task.ID)
	pipe := rdb.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, replyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("failed to publish result: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"task_id":  task.ID,
		"status":   res.Status,
		"funds":    len(res.Funds),
		"duration": time.Since(start).String(),
	}).Info("Task processed")

	return true, nil
}
