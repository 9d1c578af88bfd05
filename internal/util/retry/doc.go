// Package retry retries Kubernetes API calls and one-shot client pods with
// exponential backoff.
//
// Errors wrapped with [Fatal] stop immediately. [WithRetryable] narrows
// retries further, e.g. to transient API server errors.
package retry
