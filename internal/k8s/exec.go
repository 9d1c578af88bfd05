package k8s

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Exec runs command in the container and copies its stdout to w. Unlike pod
// logs, the stream is not subject to kubelet log rotation.
func (c *client) Exec(ctx context.Context, namespace, pod, container string, command []string, w io.Writer) error {
	if c.restConfig == nil {
		return errors.New("exec needs a client built from a REST config")
	}
	if len(command) == 0 {
		return errors.New("exec needs a command")
	}

	req := c.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(namespace).
		Name(pod).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: container,
			Command:   command,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(c.restConfig, "POST", req.URL())
	if err != nil {
		return fmt.Errorf("failed to create executor for %s/%s: %w", namespace, pod, err)
	}

	log.FromContext(ctx).V(1).Info("exec", "namespace", namespace, "pod", pod, "container", container, "command", command[0])

	var stderr bytes.Buffer
	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{Stdout: w, Stderr: &stderr})
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("exec in %s/%s failed: %w: %s", namespace, pod, err, lastLine(msg))
		}
		return fmt.Errorf("exec in %s/%s failed: %w", namespace, pod, err)
	}
	return nil
}
