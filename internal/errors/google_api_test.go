package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestClassifyGoogleAPIError(t *testing.T) {
	reqCtx := &types.RequestContext{TraceID: "trace", RequestType: types.RequestTypeListOrSearch}
	logger := logging.NewNoOpLogger()

	tests := []struct {
		name      string
		err       error
		code      string
		retryable bool
	}{
		{"not found", &googleapi.Error{Code: 404, Message: "File not found"}, utils.ErrCodeFileNotFound, false},
		{"expired", &googleapi.Error{Code: 401}, utils.ErrCodeAuthExpired, false},
		{"rate limited 429", &googleapi.Error{Code: 429}, utils.ErrCodeRateLimited, true},
		{
			"rate limited 403",
			&googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "userRateLimitExceeded"}}},
			utils.ErrCodeRateLimited, true,
		},
		{
			"quota",
			&googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "storageQuotaExceeded"}}},
			utils.ErrCodeQuotaExceeded, false,
		},
		{"forbidden", &googleapi.Error{Code: 403}, utils.ErrCodePermissionDenied, false},
		{"server", &googleapi.Error{Code: 503}, utils.ErrCodeNetworkError, true},
		{"wrapped", fmt.Errorf("list: %w", &googleapi.Error{Code: 404}), utils.ErrCodeFileNotFound, false},
		{"transport", fmt.Errorf("dial tcp: connection refused"), utils.ErrCodeNetworkError, true},
		{"cancelled", context.Canceled, utils.ErrCodeCancelled, false},
		{"deadline", context.DeadlineExceeded, utils.ErrCodeTimeout, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyGoogleAPIError("drive", tt.err, reqCtx, logger)
			require.Error(t, err)

			var appErr *utils.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.CLIError.Code)
			assert.Equal(t, tt.retryable, appErr.CLIError.Retryable)
		})
	}
}

func TestClassifyGoogleAPIError_PassThrough(t *testing.T) {
	orig := utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidPath, "bad").Build())
	got := ClassifyGoogleAPIError("drive", orig, nil, logging.NewNoOpLogger())
	assert.Same(t, orig, got)
	assert.NoError(t, ClassifyGoogleAPIError("drive", nil, nil, logging.NewNoOpLogger()))
}

func TestIsNotFoundAndInaccessible(t *testing.T) {
	notFound := &googleapi.Error{Code: 404}
	forbidden := &googleapi.Error{Code: 403}
	rateLimited := &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}}}
	classified := ClassifyGoogleAPIError("drive", notFound, nil, logging.NewNoOpLogger())

	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsNotFound(classified))
	assert.False(t, IsNotFound(forbidden))

	assert.True(t, IsInaccessible(notFound))
	assert.True(t, IsInaccessible(forbidden))
	assert.False(t, IsInaccessible(rateLimited))
	assert.False(t, IsInaccessible(fmt.Errorf("network down")))
}
