// Package k8s wraps the Kubernetes API operations mysqlset needs: server-side
// apply of rendered manifests, namespace lifecycle, StatefulSet scaling and
// rollout tracking, PVC housekeeping, and one-shot client pods.
//
// Transient API errors are retried with exponential backoff. Waits poll at a
// configurable interval and honour both a timeout and context cancellation.
package k8s
