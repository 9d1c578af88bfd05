package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// ListClaims lists PersistentVolumeClaims matching the label selector.
func (c *client) ListClaims(ctx context.Context, namespace, selector string) ([]corev1.PersistentVolumeClaim, error) {
	var list *corev1.PersistentVolumeClaimList
	err := c.withRetry(ctx, func() error {
		var err error
		list, err = c.clientset.CoreV1().PersistentVolumeClaims(namespace).List(ctx, metav1.ListOptions{
			LabelSelector: selector,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list claims in %s: %w", namespace, err)
	}
	return list.Items, nil
}

// DeleteClaim deletes a PersistentVolumeClaim, returning nil if not found.
func (c *client) DeleteClaim(ctx context.Context, namespace, name string) error {
	err := c.withRetry(ctx, func() error {
		return c.clientset.CoreV1().PersistentVolumeClaims(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	})
	if apierrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete claim %s/%s: %w", namespace, name, err)
	}

	log.FromContext(ctx).Info("deleted claim", "namespace", namespace, "name", name)
	return nil
}
