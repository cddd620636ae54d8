package common

import (
	"context"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// MaxRetryLimit caps how many times one prompt request is resent
const MaxRetryLimit = 5

// BackoffFunc returns the wait before resend number attempt (1-based)
type BackoffFunc func(attempt int) time.Duration

// AttemptFunc sends one copy of a request. It is called again for every
// resend, so it must build a fresh *http.Request each time.
type AttemptFunc func(ctx context.Context) (*http.Response, error)

// ShouldRetry reports whether a reply status is worth resending: rate limits and 5xx
func ShouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= 500 && statusCode < 600)
}

// defaultBackoff waits 3^attempt seconds, scaled by a random 0.9 to 1.1
func defaultBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	seconds := math.Pow(3, float64(attempt)) * (0.9 + rand.Float64()*0.2)
	return time.Duration(seconds * float64(time.Second))
}

// retryReason names why an attempt earns a resend, or returns "" when it does not
func retryReason(resp *http.Response, err error) string {
	switch {
	case err != nil && resp == nil:
		return "no reply"
	case resp != nil && ShouldRetry(resp.StatusCode):
		return http.StatusText(resp.StatusCode)
	}
	return ""
}

// SendWithRetry calls attempt until it gets a reply that is not worth
// resending or maxRetries resends are spent. maxRetries is clamped to
// [0, MaxRetryLimit]. A nil backoff means defaultBackoff.
//
// The last reply is returned even when its status is retryable, so callers
// can surface the server's error body.
func SendWithRetry(ctx context.Context, attempt AttemptFunc, maxRetries int, logger *slog.Logger, backoff BackoffFunc) (*http.Response, error) {
	if backoff == nil {
		backoff = defaultBackoff
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	maxRetries = min(max(maxRetries, 0), MaxRetryLimit)

	for n := 0; ; n++ {
		resp, err := attempt(ctx)
		if ctx.Err() != nil {
			closeBody(resp)
			return nil, ctx.Err()
		}

		reason := retryReason(resp, err)
		if reason == "" || n >= maxRetries {
			if err != nil {
				closeBody(resp)
				return nil, err
			}
			return resp, nil
		}
		closeBody(resp)

		delay := backoff(n + 1)
		logger.Debug("Resending prompt request",
			"resend", n+1,
			"max_retries", maxRetries,
			"reason", reason,
			"delay_seconds", delay.Seconds())

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
}
