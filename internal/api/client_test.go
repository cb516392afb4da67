package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"429", &googleapi.Error{Code: 429}, true},
		{"503", &googleapi.Error{Code: 503}, true},
		{"404", &googleapi.Error{Code: 404}, false},
		{"403 plain", &googleapi.Error{Code: 403}, false},
		{"403 rate", &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "userRateLimitExceeded"}}}, true},
		{"wrapped 500", fmt.Errorf("get: %w", &googleapi.Error{Code: 500}), true},
		{"non api", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := 100 * time.Millisecond

	for attempt := 0; attempt < 4; attempt++ {
		want := base * time.Duration(1<<attempt)
		got := calculateBackoff(base, attempt, &googleapi.Error{Code: 503})
		assert.GreaterOrEqual(t, got, want-want/4, "attempt %d", attempt)
		assert.LessOrEqual(t, got, want+want/4, "attempt %d", attempt)
	}

	capped := calculateBackoff(base, 20, &googleapi.Error{Code: 503})
	maxDelay := time.Duration(utils.MaxRetryDelayMs) * time.Millisecond
	assert.LessOrEqual(t, capped, maxDelay+maxDelay/4)

	header := http.Header{}
	header.Set("Retry-After", "2")
	assert.Equal(t, 2*time.Second, calculateBackoff(base, 0, &googleapi.Error{Code: 429, Header: header}))

	assert.Equal(t, time.Duration(0), calculateBackoff(0, 0, &googleapi.Error{Code: 503}))
}

func TestExecuteWithRetry(t *testing.T) {
	client := NewClient(nil, "me@example.com", 3, 1, logging.NewNoOpLogger())
	reqCtx := client.RequestContext(types.RequestTypeGetByID)
	assert.Equal(t, "me@example.com", reqCtx.Profile)
	assert.NotEmpty(t, reqCtx.TraceID)

	t.Run("retries transient errors", func(t *testing.T) {
		calls := 0
		got, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (string, error) {
			calls++
			if calls < 3 {
				return "", &googleapi.Error{Code: 503}
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent errors", func(t *testing.T) {
		calls := 0
		_, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (int, error) {
			calls++
			return 0, &googleapi.Error{Code: 404, Message: "File not found"}
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, utils.ErrCodeFileNotFound, utils.ErrorCode(err))
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		_, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (int, error) {
			calls++
			return 0, &googleapi.Error{Code: 500}
		})
		require.Error(t, err)
		assert.Equal(t, 4, calls)
		assert.Equal(t, utils.ErrCodeNetworkError, utils.ErrorCode(err))
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		_, err := ExecuteWithRetry(ctx, client, reqCtx, func() (int, error) {
			calls++
			return 1, nil
		})
		require.Error(t, err)
		assert.Equal(t, 0, calls)
		assert.Equal(t, utils.ErrCodeCancelled, utils.ErrorCode(err))
	})
}

func TestClient_RequestContext(t *testing.T) {
	c := NewClient(nil, "me@example.com", 3, 10, nil)

	reqCtx := c.WithParentIDs(c.WithFileIDs(c.RequestContext(types.RequestTypeMutation), "f1", "f2"), "p1")
	assert.Equal(t, "me@example.com", reqCtx.Profile)
	assert.Equal(t, types.RequestTypeMutation, reqCtx.RequestType)
	assert.Equal(t, []string{"f1", "f2"}, reqCtx.InvolvedFileIDs)
	assert.Equal(t, []string{"p1"}, reqCtx.InvolvedParentIDs)
	assert.NotEmpty(t, reqCtx.TraceID)
	assert.NotEqual(t, reqCtx.TraceID, c.RequestContext(types.RequestTypeMutation).TraceID)
}
