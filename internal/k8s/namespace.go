package k8s

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// EnsureNamespace creates the namespace if it does not exist. A namespace that
// is still terminating from an earlier destroy is reported as an error.
func (c *client) EnsureNamespace(ctx context.Context, name string, labels map[string]string) error {
	var existing *corev1.Namespace
	err := c.withRetry(ctx, func() error {
		var err error
		existing, err = c.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
		return err
	})
	if err == nil {
		if existing.Status.Phase == corev1.NamespaceTerminating {
			return fmt.Errorf("namespace %s is terminating, wait for it to be deleted and retry", name)
		}
		return nil
	}
	if !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to get namespace %s: %w", name, err)
	}

	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: labels,
		},
	}
	err = c.withRetry(ctx, func() error {
		_, err := c.clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{})
		return err
	})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create namespace %s: %w", name, err)
	}

	log.FromContext(ctx).Info("created namespace", "namespace", name)
	return nil
}

// DeleteNamespace deletes the namespace, returning nil if not found.
func (c *client) DeleteNamespace(ctx context.Context, name string) error {
	err := c.withRetry(ctx, func() error {
		return c.clientset.CoreV1().Namespaces().Delete(ctx, name, metav1.DeleteOptions{})
	})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete namespace %s: %w", name, err)
	}
	return nil
}

// WaitForNamespaceDeleted polls until the namespace no longer exists.
func (c *client) WaitForNamespaceDeleted(ctx context.Context, name string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, c.pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		_, err := c.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			return true, nil
		}
		if err != nil && !IsTransient(err) {
			return false, err
		}
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("namespace %s was not deleted: %w", name, err)
	}
	return nil
}
