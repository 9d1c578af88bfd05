package k8s

import (
	"context"
	"errors"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	clientretry "k8s.io/client-go/util/retry"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// GetStatefulSet returns the named StatefulSet.
func (c *client) GetStatefulSet(ctx context.Context, namespace, name string) (*appsv1.StatefulSet, error) {
	var sts *appsv1.StatefulSet
	err := c.withRetry(ctx, func() error {
		var err error
		sts, err = c.clientset.AppsV1().StatefulSets(namespace).Get(ctx, name, metav1.GetOptions{})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get statefulset %s/%s: %w", namespace, name, err)
	}
	return sts, nil
}

// ScaleStatefulSet updates spec.replicas through the scale subresource,
// retrying on write conflicts.
func (c *client) ScaleStatefulSet(ctx context.Context, namespace, name string, replicas int32) error {
	if replicas < 0 {
		return fmt.Errorf("replicas must not be negative, got %d", replicas)
	}

	statefulSets := c.clientset.AppsV1().StatefulSets(namespace)
	err := clientretry.RetryOnConflict(clientretry.DefaultRetry, func() error {
		scale, err := statefulSets.GetScale(ctx, name, metav1.GetOptions{})
		if err != nil {
			return err
		}
		if scale.Spec.Replicas == replicas {
			return nil
		}
		scale.Spec.Replicas = replicas
		_, err = statefulSets.UpdateScale(ctx, name, scale, metav1.UpdateOptions{})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to scale statefulset %s/%s to %d: %w", namespace, name, replicas, err)
	}

	log.FromContext(ctx).Info("scaled statefulset", "namespace", namespace, "name", name, "replicas", replicas)
	return nil
}

// WaitForRollout polls the StatefulSet until RolloutStatus reports completion.
// progress, if set, is called whenever the status message changes.
func (c *client) WaitForRollout(ctx context.Context, namespace, name string, timeout time.Duration, progress ProgressFunc) error {
	var last string
	err := wait.PollUntilContextTimeout(ctx, c.pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		sts, err := c.clientset.AppsV1().StatefulSets(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			if IsTransient(err) {
				return false, nil
			}
			return false, err
		}

		msg, done, err := RolloutStatus(sts)
		if err != nil {
			return false, err
		}
		if msg != last {
			last = msg
			if progress != nil {
				progress(msg)
			}
		}
		return done, nil
	})
	if err == nil {
		return nil
	}
	if apierrors.IsNotFound(err) {
		return fmt.Errorf("statefulset %s/%s not found: %w", namespace, name, err)
	}
	if wait.Interrupted(err) && !errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("timed out after %s waiting for rollout of statefulset %s/%s (last status: %s): %w",
			timeout, namespace, name, last, err)
	}
	return fmt.Errorf("rollout of statefulset %s/%s failed: %w", namespace, name, err)
}
