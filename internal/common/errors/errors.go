// internal/common/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// Pipeline sentinels. Stages wrap these with fmt.Errorf("%w: ...") so callers
// can classify with errors.Is regardless of how much context was attached.
var (
	ErrRateLimited        = stderrors.New("RATE_LIMITED")
	ErrServiceUnavailable = stderrors.New("SERVICE_UNAVAILABLE")
	ErrNetwork            = stderrors.New("NETWORK_ERROR")
	ErrEmptyResponse      = stderrors.New("EMPTY_RESPONSE")
	ErrMalformedOutput    = stderrors.New("MALFORMED_OUTPUT")
	ErrNoTextExtracted    = stderrors.New("NO_TEXT_EXTRACTED")
	ErrExtractionFailed   = stderrors.New("EXTRACTION_FAILED")
	ErrInvalidInput       = stderrors.New("INVALID_INPUT")
)

type ErrorCode string

const (
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeNetwork            ErrorCode = "NETWORK_ERROR"
	ErrCodeEmptyResponse      ErrorCode = "EMPTY_RESPONSE"
	ErrCodeMalformedOutput    ErrorCode = "MALFORMED_OUTPUT"
	ErrCodeNoTextExtracted    ErrorCode = "NO_TEXT_EXTRACTED"
	ErrCodeExtractionFailed   ErrorCode = "EXTRACTION_FAILED"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the caller-facing shape of a pipeline failure.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus maps the error code onto the status the HTTP API responds with.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeServiceUnavailable, ErrCodeEmptyResponse:
		return http.StatusBadGateway
	case ErrCodeNetwork:
		return http.StatusGatewayTimeout
	case ErrCodeMalformedOutput, ErrCodeNoTextExtracted, ErrCodeExtractionFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func newStandardError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewRateLimitedError(err error) *StandardError {
	return newStandardError(ErrCodeRateLimited, "Completion service rate limit exceeded", err, true)
}

func NewServiceUnavailableError(err error) *StandardError {
	return newStandardError(ErrCodeServiceUnavailable, "Completion service rejected the request", err, false)
}

func NewNetworkError(err error) *StandardError {
	return newStandardError(ErrCodeNetwork, "Completion service unreachable or timed out", err, true)
}

func NewEmptyResponseError(err error) *StandardError {
	return newStandardError(ErrCodeEmptyResponse, "Completion service returned no text", err, false)
}

func NewMalformedOutputError(err error) *StandardError {
	return newStandardError(ErrCodeMalformedOutput, "Completion output could not be parsed", err, false)
}

func NewNoTextExtractedError(err error) *StandardError {
	return newStandardError(ErrCodeNoTextExtracted, "No text could be extracted from the input", err, false)
}

func NewExtractionFailedError(err error) *StandardError {
	return newStandardError(ErrCodeExtractionFailed, "Profile extraction failed", err, false)
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// FromPipelineError classifies any error returned by a pipeline stage. The
// transport cause is checked before ErrExtractionFailed so a rate-limited
// extraction is reported as RATE_LIMITED rather than a generic failure.
func FromPipelineError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	switch {
	case stderrors.Is(err, ErrRateLimited):
		return NewRateLimitedError(err)
	case stderrors.Is(err, ErrNetwork):
		return NewNetworkError(err)
	case stderrors.Is(err, ErrServiceUnavailable):
		return NewServiceUnavailableError(err)
	case stderrors.Is(err, ErrEmptyResponse):
		return NewEmptyResponseError(err)
	case stderrors.Is(err, ErrNoTextExtracted):
		return NewNoTextExtractedError(err)
	case stderrors.Is(err, ErrMalformedOutput):
		return NewMalformedOutputError(err)
	case stderrors.Is(err, ErrExtractionFailed):
		return NewExtractionFailedError(err)
	case stderrors.Is(err, ErrInvalidInput):
		return NewInvalidInputError(err.Error())
	default:
		return newStandardError(ErrCodeInternal, "Unexpected error", err, false)
	}
}

// GetRetryCount is the number of job retries granted to a failed Zeebe job.
// The completion client already retried rate limits once, so the workflow
// engine gets at most one more attempt and only for transient conditions.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRateLimited, ErrCodeNetwork:
		return 1
	default:
		return 0
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}
