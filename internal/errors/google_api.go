package errors

import (
	"context"
	stderrors "errors"

	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"google.golang.org/api/googleapi"
)

// ClassifyGoogleAPIError maps a Drive API or transport error onto an AppError
// with a stable code. Errors that are already classified pass through.
func ClassifyGoogleAPIError(service string, err error, reqCtx *types.RequestContext, logger logging.Logger) error {
	if err == nil {
		return nil
	}
	if utils.ErrorCode(err) != "" {
		return err
	}
	if reqCtx == nil {
		reqCtx = &types.RequestContext{}
	}

	switch {
	case stderrors.Is(err, context.Canceled):
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeCancelled, "operation cancelled").
			WithContext("traceId", reqCtx.TraceID).
			Build())
	case stderrors.Is(err, context.DeadlineExceeded):
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeTimeout, err.Error()).
			WithRetryable(true).
			WithContext("traceId", reqCtx.TraceID).
			Build())
	}

	var apiErr *googleapi.Error
	if !stderrors.As(err, &apiErr) {
		logger.Error("Non-API error",
			logging.F("error", err.Error()),
			logging.F("traceId", reqCtx.TraceID),
		)
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeNetworkError, err.Error()).
			WithRetryable(true).
			WithContext("traceId", reqCtx.TraceID).
			WithContext("service", service).
			Build())
	}

	code, retryable := classifyStatus(apiErr)

	logger.Debug("API error classified",
		logging.F("httpStatus", apiErr.Code),
		logging.F("errorCode", code),
		logging.F("retryable", retryable),
		logging.F("message", apiErr.Message),
		logging.F("traceId", reqCtx.TraceID),
	)

	builder := utils.NewCLIError(code, apiErr.Message).
		WithHTTPStatus(apiErr.Code).
		WithRetryable(retryable).
		WithContext("traceId", reqCtx.TraceID).
		WithContext("requestType", string(reqCtx.RequestType)).
		WithContext("service", service)

	if len(apiErr.Errors) > 0 {
		builder.WithDriveReason(apiErr.Errors[0].Reason)
		switch apiErr.Errors[0].Reason {
		case "storageQuotaExceeded":
			builder.WithContext("suggestedAction", "free up space in Google Drive or upgrade storage")
		case "dailyLimitExceeded":
			builder.WithContext("suggestedAction", "quota will reset in 24 hours")
		case "insufficientFilePermissions":
			builder.WithContext("capability", "write_access_required")
		}
	}

	switch code {
	case utils.ErrCodeAuthExpired:
		builder.WithContext("suggestedAction", "run 'gdsync accounts import' to refresh credentials")
	case utils.ErrCodeFileNotFound:
		if len(reqCtx.InvolvedFileIDs) > 0 {
			builder.WithContext("fileId", reqCtx.InvolvedFileIDs[0])
		}
	}

	if apiErr.Code >= 500 && apiErr.Code <= 504 {
		builder.WithContext("serverError", true)
	}

	return utils.NewAppError(builder.Build())
}

func classifyStatus(apiErr *googleapi.Error) (string, bool) {
	switch apiErr.Code {
	case 400:
		code := utils.ErrCodeInvalidArgument
		for _, e := range apiErr.Errors {
			if e.Reason == "teamDriveFileLimitExceeded" {
				code = utils.ErrCodeQuotaExceeded
			}
		}
		return code, false
	case 401:
		return utils.ErrCodeAuthExpired, false
	case 403:
		code, retryable := utils.ErrCodePermissionDenied, false
		for _, e := range apiErr.Errors {
			switch e.Reason {
			case "storageQuotaExceeded":
				code = utils.ErrCodeQuotaExceeded
			case "userRateLimitExceeded", "rateLimitExceeded":
				code, retryable = utils.ErrCodeRateLimited, true
			case "dailyLimitExceeded":
				code = utils.ErrCodeRateLimited
			case "domainPolicy":
				code = utils.ErrCodePolicyViolation
			}
		}
		return code, retryable
	case 404:
		return utils.ErrCodeFileNotFound, false
	case 409:
		return utils.ErrCodeInvalidArgument, false
	case 429:
		return utils.ErrCodeRateLimited, true
	case 500, 502, 503, 504:
		return utils.ErrCodeNetworkError, true
	default:
		return utils.ErrCodeUnknown, apiErr.Code >= 500
	}
}

// IsNotFound reports whether err is a 404 from the API or an AppError carrying
// FILE_NOT_FOUND.
func IsNotFound(err error) bool {
	if utils.ErrorCode(err) == utils.ErrCodeFileNotFound {
		return true
	}
	var apiErr *googleapi.Error
	return stderrors.As(err, &apiErr) && apiErr.Code == 404
}

// IsInaccessible reports errors that mean a folder cannot be read by the
// current account: not found or permission denied.
func IsInaccessible(err error) bool {
	if IsNotFound(err) {
		return true
	}
	if utils.ErrorCode(err) == utils.ErrCodePermissionDenied {
		return true
	}
	var apiErr *googleapi.Error
	return stderrors.As(err, &apiErr) && apiErr.Code == 403 && !isRateLimit(apiErr)
}

func isRateLimit(apiErr *googleapi.Error) bool {
	for _, e := range apiErr.Errors {
		switch e.Reason {
		case "userRateLimitExceeded", "rateLimitExceeded", "dailyLimitExceeded", "storageQuotaExceeded":
			return true
		}
	}
	return false
}
