package k8s

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// RunPod creates a one-shot pod, waits for it to terminate and returns its
// logs. The pod is deleted on every path, including timeouts and
// cancellation.
func (c *client) RunPod(ctx context.Context, pod *corev1.Pod, timeout time.Duration) (string, error) {
	if pod.Spec.RestartPolicy == "" {
		pod.Spec.RestartPolicy = corev1.RestartPolicyNever
	}
	if pod.Spec.RestartPolicy != corev1.RestartPolicyNever {
		return "", fmt.Errorf("pod %s must use restartPolicy Never", pod.Name)
	}

	logger := log.FromContext(ctx).WithValues("namespace", pod.Namespace, "pod", pod.Name)
	pods := c.clientset.CoreV1().Pods(pod.Namespace)

	err := c.withRetry(ctx, func() error {
		_, err := pods.Create(ctx, pod, metav1.CreateOptions{})
		return err
	})
	if apierrors.IsAlreadyExists(err) {
		return "", fmt.Errorf("pod %s/%s already exists, a previous run may still be cleaning up: %w", pod.Namespace, pod.Name, err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create pod %s/%s: %w", pod.Namespace, pod.Name, err)
	}
	logger.V(1).Info("created client pod")

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		grace := int64(0)
		err := pods.Delete(cleanupCtx, pod.Name, metav1.DeleteOptions{GracePeriodSeconds: &grace})
		if err != nil && !apierrors.IsNotFound(err) {
			logger.Error(err, "failed to delete client pod")
		}
	}()

	var phase corev1.PodPhase
	err = wait.PollUntilContextTimeout(ctx, c.pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		current, err := pods.Get(ctx, pod.Name, metav1.GetOptions{})
		if err != nil {
			if IsTransient(err) {
				return false, nil
			}
			return false, err
		}
		phase = current.Status.Phase
		return phase == corev1.PodSucceeded || phase == corev1.PodFailed, nil
	})
	if err != nil {
		return "", fmt.Errorf("pod %s/%s did not complete (phase %q): %w", pod.Namespace, pod.Name, phase, err)
	}

	logs, logErr := c.podLogs(ctx, pod.Namespace, pod.Name)
	if phase == corev1.PodFailed {
		return logs, fmt.Errorf("pod %s/%s failed: %s", pod.Namespace, pod.Name, lastLine(logs))
	}
	if logErr != nil {
		return "", logErr
	}

	logger.V(1).Info("client pod completed")
	return logs, nil
}

// WaitForPodsDeleted polls until every named pod is gone.
func (c *client) WaitForPodsDeleted(ctx context.Context, namespace string, names []string, timeout time.Duration) error {
	remaining := slices.Clone(names)
	err := wait.PollUntilContextTimeout(ctx, c.pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		left := remaining[:0]
		for _, name := range remaining {
			_, err := c.clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
			switch {
			case apierrors.IsNotFound(err):
			case err == nil || IsTransient(err):
				left = append(left, name)
			default:
				return false, err
			}
		}
		remaining = left
		return len(remaining) == 0, nil
	})
	if err != nil {
		return fmt.Errorf("pods %s in %s were not deleted: %w", strings.Join(remaining, ", "), namespace, err)
	}
	return nil
}

func (c *client) podLogs(ctx context.Context, namespace, name string) (string, error) {
	var raw []byte
	err := c.withRetry(ctx, func() error {
		var err error
		raw, err = c.clientset.CoreV1().Pods(namespace).GetLogs(name, &corev1.PodLogOptions{}).DoRaw(ctx)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to get logs of pod %s/%s: %w", namespace, name, err)
	}
	return string(raw), nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "no output"
	}
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
