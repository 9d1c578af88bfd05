package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Policy is the backoff schedule applied by WithExponentialBackoff.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Retryable filters non-fatal errors. Nil retries all of them.
	Retryable func(error) bool

	// Description names the operation in retry log lines.
	Description string
}

// Option adjusts a Policy.
type Option func(*Policy)

func defaultPolicy() Policy {
	return Policy{
		MaxRetries:   5,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
	}
}

// next returns the delay that follows d.
func (p Policy) next(d time.Duration) time.Duration {
	n := time.Duration(float64(d) * p.Multiplier)
	if n > p.MaxDelay {
		return p.MaxDelay
	}
	return n
}

func (p Policy) shouldRetry(err error) bool {
	return p.Retryable == nil || p.Retryable(err)
}

// WithExponentialBackoff runs operation until it succeeds, returns a fatal or
// non-retryable error, the retry budget runs out, or ctx is done. Each retry
// is logged at V(1) on the logger carried by ctx.
func WithExponentialBackoff(ctx context.Context, operation func() error, opts ...Option) error {
	p := defaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}
	logger := log.FromContext(ctx).WithName("retry")

	delay := p.InitialDelay
	for attempt := 1; ; attempt++ {
		err := operation()
		switch {
		case err == nil:
			return nil
		case IsFatal(err):
			return fmt.Errorf("fatal error (not retrying): %w", err)
		case !p.shouldRetry(err):
			return err
		case attempt > p.MaxRetries:
			return fmt.Errorf("operation failed after %d attempts: %w", attempt, err)
		}

		logger.V(1).Info("retrying", "operation", p.Description, "attempt", attempt, "delay", delay, "error", err.Error())

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("context cancelled after %d attempts: %w", attempt, ctx.Err())
		case <-timer.C:
		}
		delay = p.next(delay)
	}
}

// WithMaxRetries sets how many times a failed attempt is repeated.
func WithMaxRetries(n int) Option {
	return func(p *Policy) { p.MaxRetries = n }
}

// WithInitialDelay sets the wait before the first retry.
func WithInitialDelay(d time.Duration) Option {
	return func(p *Policy) { p.InitialDelay = d }
}

// WithMaxDelay caps the wait between retries.
func WithMaxDelay(d time.Duration) Option {
	return func(p *Policy) { p.MaxDelay = d }
}

// WithMultiplier sets the backoff growth factor.
func WithMultiplier(m float64) Option {
	return func(p *Policy) { p.Multiplier = m }
}

// WithRetryable restricts retries to errors accepted by fn.
func WithRetryable(fn func(error) bool) Option {
	return func(p *Policy) { p.Retryable = fn }
}

// WithDescription names the operation in log output.
func WithDescription(what string) Option {
	return func(p *Policy) { p.Description = what }
}

// FatalError marks an error that must not be retried.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

// Fatal wraps err so WithExponentialBackoff returns it immediately.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether err carries a FatalError.
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
