package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/google/go-github/v55/github"

	apperrors "github.com/kurihiro0119/github-activity-report/internal/errors"
	"github.com/kurihiro0119/github-activity-report/internal/logging"
)

// RetryConfig controls retries of transient network failures
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Sleep          func(ctx context.Context, d time.Duration) error
}

// DefaultRetryConfig returns three attempts with 2s, 4s, 8s backoff
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		Sleep:          sleepContext,
	}
}

func (r RetryConfig) backoffForAttempt(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return r.InitialBackoff * time.Duration(1<<(attempt-1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// withRetry runs fn through the rate limiter, retrying transient network
// failures. Authentication and rate limit failures return immediately.
func (c *githubCollector) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	cfg := c.retry
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}

	for attempt := 1; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		if !isTransientNetworkError(err) {
			return classifyError(op, err)
		}
		if attempt >= cfg.MaxAttempts {
			return apperrors.NewNetworkError(fmt.Sprintf("%s failed after %d attempts", op, attempt), err)
		}

		wait := cfg.backoffForAttempt(attempt)
		logging.Log.Warnf("%s failed (attempt %d/%d), retrying in %s: %v", op, attempt, cfg.MaxAttempts, wait, err)
		if err := cfg.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// classifyError maps GitHub client errors onto the application taxonomy
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		return classifyStatus(op, httpErr.StatusCode, httpErr.Headers, httpErr.Message, err)
	}

	var gqlErr *api.GraphQLError
	if errors.As(err, &gqlErr) {
		for _, item := range gqlErr.Errors {
			switch item.Type {
			case "RATE_LIMITED":
				return apperrors.NewRateLimitedError("GitHub GraphQL rate limit exceeded", time.Time{}, err)
			case "NOT_FOUND":
				return apperrors.NewNotFoundError(op)
			case "FORBIDDEN":
				return apperrors.NewUnauthorizedError("insufficient permissions for "+op, err)
			}
		}
		return apperrors.NewInternalError(op+" failed", err)
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return apperrors.NewRateLimitedError("GitHub API rate limit exceeded", rateErr.Rate.Reset.Time, err)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		var resetAt time.Time
		if abuseErr.RetryAfter != nil {
			resetAt = time.Now().Add(*abuseErr.RetryAfter)
		}
		return apperrors.NewRateLimitedError("GitHub secondary rate limit exceeded", resetAt, err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return classifyStatus(op, respErr.Response.StatusCode, respErr.Response.Header, respErr.Message, err)
	}

	if isTransientNetworkError(err) {
		return apperrors.NewNetworkError(op+" failed", err)
	}

	return apperrors.NewInternalError(op+" failed", err)
}

func classifyStatus(op string, status int, headers http.Header, message string, err error) error {
	switch {
	case status == http.StatusUnauthorized:
		return apperrors.NewUnauthorizedError("GitHub rejected the token", err)
	case status == http.StatusTooManyRequests,
		status == http.StatusForbidden && isRateLimitResponse(headers, message):
		return apperrors.NewRateLimitedError("GitHub API rate limit exceeded", resetFromHeaders(headers), err)
	case status == http.StatusForbidden:
		return apperrors.NewUnauthorizedError("insufficient permissions for "+op, err)
	case status == http.StatusNotFound:
		return apperrors.NewNotFoundError(op)
	case status >= 500:
		return apperrors.NewNetworkError(op+" failed", err)
	default:
		return apperrors.NewInternalError(op+" failed", err)
	}
}

func isRateLimitResponse(headers http.Header, message string) bool {
	if headers != nil && headers.Get("X-RateLimit-Remaining") == "0" {
		return true
	}
	return strings.Contains(strings.ToLower(message), "rate limit")
}

func resetFromHeaders(headers http.Header) time.Time {
	if headers == nil {
		return time.Time{}
	}
	raw := headers.Get("X-RateLimit-Reset")
	if raw == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// isTransientNetworkError reports whether err looks like a dropped
// connection, timeout or DNS failure
func isTransientNetworkError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"connection reset", "timeout", "socket hang up", "no such host", "giving up after"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
