package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/backend/internal/pipeline"
	"github.com/wonny/fundlens/backend/internal/s0_ingest"
	"github.com/wonny/fundlens/backend/internal/snapshot"
	"github.com/wonny/fundlens/backend/internal/worker"
	"github.com/wonny/fundlens/backend/pkg/redis"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{snapshot.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("failed to store snapshot: %w", snapshot.ErrIDConflict), http.StatusConflict},
		{fmt.Errorf("failed to store snapshot: %w", snapshot.ErrDuplicateChecksum), http.StatusConflict},
		{&s0_ingest.MissingColumnsError{Columns: []string{"ytd"}}, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: bad file", worker.ErrTaskFailed), http.StatusUnprocessableEntity},
		{pipeline.ErrEmptyFile, http.StatusBadRequest},
		{fmt.Errorf("%w %q", s0_ingest.ErrInvalidPeriod, "x"), http.StatusBadRequest},
		{worker.ErrTimeout, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestLocalUploadLimiter(t *testing.T) {
	ctx := context.Background()
	l := NewLocalUploadLimiter(2)

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "10.0.0.1")
	assert.False(t, ok)

	// budgets are per client
	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok)

	unlimited := NewLocalUploadLimiter(0)
	for i := 0; i < 10; i++ {
		ok, _ = unlimited.Allow(ctx, "10.0.0.1")
		assert.True(t, ok)
	}
}

func TestRedisUploadLimiter(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	l := NewRedisUploadLimiter(redis.Wrap(rdb), 1)

	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:53211"
	assert.Equal(t, "192.168.1.5", clientKey(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientKey(req))
}
