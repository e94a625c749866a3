package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeConfiguration ErrCode = "CONFIGURATION"
	ErrCodeUnauthorized  ErrCode = "UNAUTHORIZED"
	ErrCodeRateLimited   ErrCode = "RATE_LIMITED"
	ErrCodeNetwork       ErrCode = "NETWORK"
	ErrCodePartial       ErrCode = "PARTIAL_FAILURE"
	ErrCodeNotFound      ErrCode = "NOT_FOUND"
	ErrCodeInternal      ErrCode = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error

	// ResetAt is set on rate limit errors when the provider reports it
	ResetAt time.Time
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeConfiguration,
		Message: message,
		Err:     err,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Err:     err,
	}
}

// NewRateLimitedError creates a new rate limited error
func NewRateLimitedError(message string, resetAt time.Time, err error) *AppError {
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: message,
		Err:     err,
		ResetAt: resetAt,
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeNetwork,
		Message: message,
		Err:     err,
	}
}

// NewPartialError creates an error for an optional feature that failed
func NewPartialError(feature string, err error) *AppError {
	return &AppError{
		Code:    ErrCodePartial,
		Message: fmt.Sprintf("%s unavailable", feature),
		Err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first AppError in err's chain
func CodeOf(err error) (ErrCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

func hasCode(err error, code ErrCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// IsPartial checks if the error is an optional feature failure
func IsPartial(err error) bool {
	return hasCode(err, ErrCodePartial)
}

// IsConfiguration checks if the error is a configuration error
func IsConfiguration(err error) bool {
	return hasCode(err, ErrCodeConfiguration)
}

// IsUnauthorized checks if the error is an authentication error
func IsUnauthorized(err error) bool {
	return hasCode(err, ErrCodeUnauthorized)
}

// IsRateLimited checks if the error is a rate limited error
func IsRateLimited(err error) bool {
	return hasCode(err, ErrCodeRateLimited)
}

// IsNetwork checks if the error is a network error
func IsNetwork(err error) bool {
	return hasCode(err, ErrCodeNetwork)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsFatal reports whether err must abort the whole run
func IsFatal(err error) bool {
	return IsConfiguration(err) || IsUnauthorized(err) || IsRateLimited(err)
}

// Tip returns an actionable hint for a fatal error
func Tip(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return "Re-run with --loglevel=debug for more detail."
	}

	switch appErr.Code {
	case ErrCodeConfiguration:
		return "Set GITHUB_TOKEN or GH_TOKEN environment variable."
	case ErrCodeUnauthorized:
		return "Ensure GITHUB_TOKEN or GH_TOKEN is valid and has repo and project read access. Create a token at https://github.com/settings/tokens"
	case ErrCodeRateLimited:
		if !appErr.ResetAt.IsZero() {
			return fmt.Sprintf("Rate limit resets at %s. Use a personal access token with higher rate limits.", appErr.ResetAt.UTC().Format(time.RFC3339))
		}
		return "Use a personal access token with higher rate limits."
	case ErrCodeNetwork:
		return "Check network connectivity and GitHub API status at https://www.githubstatus.com/"
	default:
		return "Re-run with --loglevel=debug for more detail."
	}
}
