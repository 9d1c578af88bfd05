package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/utils/ptr"

	"github.com/imamik/mysqlset/internal/config"
	"github.com/imamik/mysqlset/internal/k8s"
)

// fakeKube records calls made through k8s.Client.
type fakeKube struct {
	calls []string

	sts          *appsv1.StatefulSet
	claims       []corev1.PersistentVolumeClaim
	defaultClass string
	classes      map[string]bool
	version      string

	applied   []byte
	deleted   []byte
	scaledTo  int32
	podLogs   map[string]string
	podErr    error
	execOut   map[string]string
	rolloutFn func(progress k8s.ProgressFunc) error

	errs map[string]error
}

var _ k8s.Client = (*fakeKube)(nil)

func newFakeKube(replicas int32) *fakeKube {
	return &fakeKube{
		sts: &appsv1.StatefulSet{
			ObjectMeta: metav1.ObjectMeta{Name: "mysql", Namespace: "mysql"},
			Spec:       appsv1.StatefulSetSpec{Replicas: ptr.To(replicas)},
		},
		defaultClass: "standard",
		classes:      map[string]bool{"standard": true},
		version:      "v1.30.2",
		podLogs:      map[string]string{},
		execOut:      map[string]string{},
		errs:         map[string]error{},
	}
}

func (f *fakeKube) record(call string) error {
	f.calls = append(f.calls, call)
	name, _, _ := strings.Cut(call, " ")
	return f.errs[name]
}

func (f *fakeKube) ApplyManifests(_ context.Context, manifests []byte, fieldManager string) error {
	f.applied = manifests
	return f.record("ApplyManifests " + fieldManager)
}

func (f *fakeKube) DeleteManifests(_ context.Context, manifests []byte) error {
	f.deleted = manifests
	return f.record("DeleteManifests")
}

func (f *fakeKube) EnsureNamespace(_ context.Context, name string, _ map[string]string) error {
	return f.record("EnsureNamespace " + name)
}

func (f *fakeKube) DeleteNamespace(_ context.Context, name string) error {
	return f.record("DeleteNamespace " + name)
}

func (f *fakeKube) WaitForNamespaceDeleted(_ context.Context, name string, _ time.Duration) error {
	return f.record("WaitForNamespaceDeleted " + name)
}

func (f *fakeKube) GetStatefulSet(_ context.Context, namespace, name string) (*appsv1.StatefulSet, error) {
	if err := f.record("GetStatefulSet " + namespace + "/" + name); err != nil {
		return nil, err
	}
	if f.sts == nil {
		return nil, fmt.Errorf("failed to get statefulset %s/%s: %w", namespace, name,
			apierrors.NewNotFound(schema.GroupResource{Group: "apps", Resource: "statefulsets"}, name))
	}
	return f.sts, nil
}

func (f *fakeKube) ScaleStatefulSet(_ context.Context, _, _ string, replicas int32) error {
	f.scaledTo = replicas
	return f.record(fmt.Sprintf("ScaleStatefulSet %d", replicas))
}

func (f *fakeKube) WaitForRollout(_ context.Context, _, _ string, _ time.Duration, progress k8s.ProgressFunc) error {
	if err := f.record("WaitForRollout"); err != nil {
		return err
	}
	if f.rolloutFn != nil {
		return f.rolloutFn(progress)
	}
	return nil
}

func (f *fakeKube) ListClaims(_ context.Context, _, selector string) ([]corev1.PersistentVolumeClaim, error) {
	if err := f.record("ListClaims " + selector); err != nil {
		return nil, err
	}
	return f.claims, nil
}

func (f *fakeKube) DeleteClaim(_ context.Context, _, name string) error {
	return f.record("DeleteClaim " + name)
}

func (f *fakeKube) WaitForPodsDeleted(_ context.Context, _ string, names []string, _ time.Duration) error {
	return f.record("WaitForPodsDeleted " + strings.Join(names, ","))
}

func (f *fakeKube) RunPod(_ context.Context, pod *corev1.Pod, _ time.Duration) (string, error) {
	if err := f.record("RunPod " + pod.Name); err != nil {
		return "", err
	}
	if f.podErr != nil {
		return "", f.podErr
	}
	return f.podLogs[pod.Name], nil
}

func (f *fakeKube) Exec(_ context.Context, _, pod, container string, _ []string, w io.Writer) error {
	if err := f.record("Exec " + pod + " " + container); err != nil {
		return err
	}
	_, err := io.WriteString(w, f.execOut[pod])
	return err
}

func (f *fakeKube) ServerVersion(context.Context) (string, error) {
	if err := f.record("ServerVersion"); err != nil {
		return "", err
	}
	return f.version, nil
}

func (f *fakeKube) DefaultStorageClass(context.Context) (string, error) {
	if err := f.record("DefaultStorageClass"); err != nil {
		return "", err
	}
	return f.defaultClass, nil
}

func (f *fakeKube) StorageClassExists(_ context.Context, name string) (bool, error) {
	if err := f.record("StorageClassExists " + name); err != nil {
		return false, err
	}
	return f.classes[name], nil
}

// called reports whether a call with the given prefix was recorded.
func (f *fakeKube) called(prefix string) bool {
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func claim(name string) corev1.PersistentVolumeClaim {
	return corev1.PersistentVolumeClaim{ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "mysql"}}
}

// useFakes swaps the factories for fakes and restores them after the test.
func useFakes(t *testing.T, cfg *config.Config, kube *fakeKube) {
	t.Helper()

	origLoad := loadConfigFile
	origFind := findConfigFile
	origTimeouts := loadTimeouts
	origKube := newKubeClient
	origTTY := isInteractiveTTY
	t.Cleanup(func() {
		loadConfigFile = origLoad
		findConfigFile = origFind
		loadTimeouts = origTimeouts
		newKubeClient = origKube
		isInteractiveTTY = origTTY
	})

	loadConfigFile = func(string) (*config.Config, error) { return cfg, nil }
	findConfigFile = func() (string, error) { return "mysqlset.yaml", nil }
	loadTimeouts = func() *config.Timeouts {
		return &config.Timeouts{
			Rollout:           time.Second,
			NamespaceDelete:   time.Second,
			ClientPod:         time.Second,
			Backup:            time.Second,
			PollInterval:      10 * time.Millisecond,
			RetryMaxAttempts:  1,
			RetryInitialDelay: time.Millisecond,
		}
	}
	newKubeClient = func(Options, *config.Timeouts) (k8s.Client, error) { return kube, nil }
	isInteractiveTTY = func() bool { return false }
}

// captureOutput captures stdout written by f.
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}
