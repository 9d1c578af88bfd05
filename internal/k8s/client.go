package k8s

import (
	"context"
	"fmt"
	"io"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/imamik/mysqlset/internal/util/retry"
)

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = 2 * time.Second

// ProgressFunc receives human-readable progress messages during waits.
type ProgressFunc func(message string)

// Client provides the Kubernetes operations used by mysqlset.
type Client interface {
	// ApplyManifests applies multi-document YAML using Server-Side Apply.
	// Conflicts are forced so imperative edits never block a re-apply.
	ApplyManifests(ctx context.Context, manifests []byte, fieldManager string) error

	// DeleteManifests deletes every object in the YAML stream in reverse
	// order. Objects that are already gone are ignored.
	DeleteManifests(ctx context.Context, manifests []byte) error

	// EnsureNamespace creates the namespace if it does not exist.
	EnsureNamespace(ctx context.Context, name string, labels map[string]string) error

	// DeleteNamespace deletes the namespace, returning nil if not found.
	DeleteNamespace(ctx context.Context, name string) error

	// WaitForNamespaceDeleted blocks until the namespace is gone.
	WaitForNamespaceDeleted(ctx context.Context, name string, timeout time.Duration) error

	// GetStatefulSet returns the named StatefulSet.
	GetStatefulSet(ctx context.Context, namespace, name string) (*appsv1.StatefulSet, error)

	// ScaleStatefulSet sets the desired replica count through the scale subresource.
	ScaleStatefulSet(ctx context.Context, namespace, name string, replicas int32) error

	// WaitForRollout blocks until the StatefulSet rollout is complete.
	WaitForRollout(ctx context.Context, namespace, name string, timeout time.Duration, progress ProgressFunc) error

	// ListClaims lists PersistentVolumeClaims matching the label selector.
	ListClaims(ctx context.Context, namespace, selector string) ([]corev1.PersistentVolumeClaim, error)

	// DeleteClaim deletes a PersistentVolumeClaim, returning nil if not found.
	DeleteClaim(ctx context.Context, namespace, name string) error

	// WaitForPodsDeleted blocks until none of the named pods exists.
	WaitForPodsDeleted(ctx context.Context, namespace string, names []string, timeout time.Duration) error

	// Exec runs command in a container of a running pod and streams its
	// stdout to w.
	Exec(ctx context.Context, namespace, pod, container string, command []string, w io.Writer) error

	// RunPod runs a one-shot pod to completion, returns its logs and always
	// deletes it afterwards.
	RunPod(ctx context.Context, pod *corev1.Pod, timeout time.Duration) (string, error)

	// ServerVersion returns the API server git version.
	ServerVersion(ctx context.Context) (string, error)

	// DefaultStorageClass returns the name of the default StorageClass, or ""
	// if the cluster has none.
	DefaultStorageClass(ctx context.Context) (string, error)

	// StorageClassExists reports whether the named StorageClass exists.
	StorageClassExists(ctx context.Context, name string) (bool, error)
}

// client implements the Client interface using k8s.io/client-go.
type client struct {
	clientset     kubernetes.Interface
	dynamicClient dynamic.Interface
	mapper        meta.RESTMapper
	// restConfig is nil for clients built from fakes, which cannot exec.
	restConfig *rest.Config

	pollInterval time.Duration
	retryOpts    []retry.Option
}

// Option configures a Client.
type Option func(*client)

// WithPollInterval sets the interval between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithRetryOptions sets the backoff used for transient API errors.
func WithRetryOptions(opts ...retry.Option) Option {
	return func(c *client) {
		c.retryOpts = opts
	}
}

// LoadRESTConfig resolves a REST config with the standard kubeconfig loading
// rules. An empty kubeconfig path falls back to $KUBECONFIG and
// ~/.kube/config; an empty context uses the current context.
func LoadRESTConfig(kubeconfig, kubeContext string) (*rest.Config, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		rules.ExplicitPath = kubeconfig
	}

	overrides := &clientcmd.ConfigOverrides{}
	if kubeContext != "" {
		overrides.CurrentContext = kubeContext
	}

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	return restConfig, nil
}

// NewFromRESTConfig creates a Client from a REST config.
func NewFromRESTConfig(restConfig *rest.Config, opts ...Option) (Client, error) {
	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(discoveryClient))

	opts = append(opts, func(c *client) { c.restConfig = restConfig })
	return NewFromClients(clientset, dynamicClient, mapper, opts...), nil
}

// NewFromClients creates a Client from pre-configured clients.
// This is useful for testing with fake clients.
func NewFromClients(
	clientset kubernetes.Interface,
	dynamicClient dynamic.Interface,
	mapper meta.RESTMapper,
	opts ...Option,
) Client {
	c := &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		mapper:        mapper,
		pollInterval:  DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
