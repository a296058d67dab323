package spotify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"spotmigrate/internal/shared"
)

const (
	// MaxRetries bounds how many times a single remote call is reattempted.
	MaxRetries = 3

	// InitialRetryDelay seeds the exponential backoff between attempts.
	InitialRetryDelay = time.Second
)

// APIError is a non-2xx response from the Spotify API.
type APIError struct {
	Status     int
	Message    string
	RetryAfter time.Duration // server-suggested wait from a 429 response, 0 if absent
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("spotify API error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("spotify API error: status %d", e.Status)
}

// RateLimited reports whether the error is a 429 response.
func (e *APIError) RateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

// Transient reports whether the error is worth retrying (rate limit or server-side 5xx).
func (e *APIError) Transient() bool {
	return e.RateLimited() || e.Status >= 500
}

// AuthFailed reports whether the error indicates invalid or insufficient credentials.
func (e *APIError) AuthFailed() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Caller executes remote calls with bounded retry for rate-limit and timeout failures.
//
// A single retry budget of [MaxRetries] is shared across both failure kinds:
// a call that hits two 429s and one timeout has exhausted its budget. Rate-limit
// waits honor the server-suggested Retry-After duration when present, otherwise
// the backoff doubles per attempt from [InitialRetryDelay]. Any other error is
// returned to the caller unchanged on the first occurrence.
type Caller struct {
	MaxRetries   int
	InitialDelay time.Duration
	Logger       *log.Logger

	// Sleep is swapped out in tests to observe backoff without waiting.
	Sleep func(time.Duration)
}

// NewCaller returns a Caller with the default retry policy.
func NewCaller(logger *log.Logger) *Caller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Caller{
		MaxRetries:   MaxRetries,
		InitialDelay: InitialRetryDelay,
		Logger:       logger,
		Sleep:        time.Sleep,
	}
}

// Call runs fn, retrying per the policy above. op names the operation for logs
// and wrapped errors.
//
// Once the budget is exhausted the last error is wrapped in
// [shared.ErrRetriesExhausted] so callers can distinguish a terminally failed
// call from a non-transient one.
func (c *Caller) Call(ctx context.Context, op string, fn func(context.Context) error) error {
	delay := c.InitialDelay
	var err error

	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		if attempt >= c.MaxRetries {
			return fmt.Errorf("%w: %s failed after %d retries: %v", shared.ErrRetriesExhausted, op, c.MaxRetries, err)
		}

		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.RateLimited():
			wait := delay
			if apiErr.RetryAfter > 0 {
				wait = apiErr.RetryAfter
			}
			c.Logger.Warn("rate limit hit, backing off", "op", op, "wait", wait, "attempt", attempt+1)
			c.Sleep(wait)
			delay *= 2

		case errors.As(err, &apiErr) && apiErr.Transient():
			c.Logger.Warn("transient server error, retrying", "op", op, "status", apiErr.Status, "attempt", attempt+1)
			c.Sleep(delay)
			delay *= 2

		case isTimeout(err):
			c.Logger.Warn("request timed out, retrying", "op", op, "attempt", attempt+1)
			c.Sleep(delay)
			delay *= 2

		default:
			return err
		}
	}
}

// isTimeout reports whether err is a network or deadline timeout.
//
// Context cancellation is deliberately not a timeout: a canceled context means
// the caller gave up and retrying would be wrong.
func isTimeout(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
