package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/backend/internal/contracts"
	"github.com/wonny/fundlens/backend/internal/fundconfig"
	"github.com/wonny/fundlens/backend/pkg/redis"
)

// echoHandler returns one fund per byte of the file, named after the filename
func echoHandler(ctx context.Context, task Task) ([]contracts.Fund, error) {
	if task.Filename == "bad.csv" {
		return nil, errors.New("missing required columns: symbol")
	}
	if task.Filename == "panic.csv" {
		panic("boom")
	}
	funds := make([]contracts.Fund, 0, len(task.File))
	for range task.File {
		funds = append(funds, contracts.Fund{
			Symbol:     task.Filename,
			AssetClass: "X",
			Metrics:    contracts.MetricVector{contracts.MetricOneYear: 1.5},
			Score:      &contracts.ScoreDetail{Final: 55.5, Percentile: 50},
			Tags:       []string{"Momentum"},
		})
	}
	return funds, nil
}

func TestLocal_Submit(t *testing.T) {
	res, err := NewLocal(echoHandler).Submit(context.Background(), Task{File: []byte("ab"), Filename: "ok.csv"})
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)
	assert.NotEmpty(t, res.TaskID)
	assert.Len(t, res.Funds, 2)
	assert.NoError(t, res.Err())

	res, err = NewLocal(echoHandler).Submit(context.Background(), Task{Filename: "bad.csv"})
	require.NoError(t, err)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "missing required columns")
	assert.Error(t, res.Err())

	res, err = NewLocal(echoHandler).Submit(context.Background(), Task{Filename: "panic.csv"})
	require.NoError(t, err)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "boom")
}

func TestPool_Submit(t *testing.T) {
	pool := NewPool(3, echoHandler, nil)
	defer pool.Stop()

	done := make(chan Result, 10)
	for i := 0; i < 10; i++ {
		go func() {
			res, err := pool.Submit(context.Background(), Task{File: []byte("x"), Filename: "ok.csv"})
			assert.NoError(t, err)
			done <- res
		}()
	}
	for i := 0; i < 10; i++ {
		res := <-done
		assert.Equal(t, StatusDone, res.Status)
		assert.Len(t, res.Funds, 1)
	}
}

func TestPool_CallerCanAbandon(t *testing.T) {
	var finished atomic.Int32
	release := make(chan struct{})
	slow := func(ctx context.Context, task Task) ([]contracts.Fund, error) {
		<-release
		finished.Add(1)
		return nil, nil
	}

	pool := NewPool(1, slow, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := pool.Submit(ctx, Task{Filename: "slow.csv"})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	// the task is not interrupted; it completes and its result is dropped
	close(release)
	pool.Stop()
	assert.Equal(t, int32(1), finished.Load())

	_, err = pool.Submit(context.Background(), Task{})
	assert.True(t, errors.Is(err, ErrPoolClosed))
}

func newRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redis.Wrap(rdb)
}

func TestRedisQueue_RoundTrip(t *testing.T) {
	client := newRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumer(client, "fundlens:test", echoHandler, nil)
	consumer.poll = 50 * time.Millisecond
	go func() { _ = consumer.Run(ctx) }()

	queue := NewRedisQueue(client, "fundlens:test", 5*time.Second, nil)
	task := Task{
		File:     []byte("abc"),
		Filename: "ok.csv",
		Config: fundconfig.Config{
			AssetClassBenchmarks: map[string]fundconfig.Benchmark{"X": {Ticker: "IWF", Name: "Russell"}},
		},
		StrictColumns: true,
	}

	res, err := queue.Submit(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)
	require.Len(t, res.Funds, 3)
	assert.Equal(t, "ok.csv", res.Funds[0].Symbol)
	assert.Equal(t, 55.5, res.Funds[0].Score.Final)
	assert.Equal(t, 1.5, res.Funds[0].Metrics[contracts.MetricOneYear])
	assert.Equal(t, []string{"Momentum"}, res.Funds[0].Tags)

	res, err = queue.Submit(ctx, Task{Filename: "bad.csv"})
	require.NoError(t, err)
	assert.Equal(t, StatusError, res.Status)
}

func TestRedisQueue_TimeoutWithoutConsumer(t *testing.T) {
	queue := NewRedisQueue(newRedis(t), "fundlens:idle", time.Second, nil)

	_, err := queue.Submit(context.Background(), Task{Filename: "ok.csv"})
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestConsumer_ProcessOneEmptyQueue(t *testing.T) {
	consumer := NewConsumer(newRedis(t), "fundlens:empty", echoHandler, nil)
	consumer.poll = 50 * time.Millisecond

	handled, err := consumer.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.False(t, handled)
}
