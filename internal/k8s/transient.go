package k8s

import (
	"context"
	"errors"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	utilnet "k8s.io/apimachinery/pkg/util/net"

	"github.com/imamik/mysqlset/internal/util/retry"
)

// IsTransient reports whether an API error is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return apierrors.IsServerTimeout(err) ||
		apierrors.IsTimeout(err) ||
		apierrors.IsTooManyRequests(err) ||
		apierrors.IsServiceUnavailable(err) ||
		apierrors.IsInternalError(err) ||
		utilnet.IsConnectionRefused(err) ||
		utilnet.IsConnectionReset(err) ||
		utilnet.IsProbableEOF(err)
}

// withRetry runs op, retrying transient errors with exponential backoff.
func (c *client) withRetry(ctx context.Context, op func() error) error {
	opts := append([]retry.Option{}, c.retryOpts...)
	opts = append(opts, retry.WithRetryable(IsTransient))
	return retry.WithExponentialBackoff(ctx, op, opts...)
}
