package inventory

import (
	"context"
	"fmt"
	"sort"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/imamik/mysqlset/internal/k8s"
	"github.com/imamik/mysqlset/internal/util/labels"
	"github.com/imamik/mysqlset/internal/util/naming"
)

// Role is the replication role of a pod, derived from its ordinal.
type Role string

// Roles.
const (
	RolePrimary Role = "primary"
	RoleReplica Role = "replica"
)

// RoleForOrdinal returns the role of the pod with the given ordinal.
func RoleForOrdinal(ordinal int) Role {
	if ordinal == 0 {
		return RolePrimary
	}
	return RoleReplica
}

// PodStatus describes one StatefulSet member.
type PodStatus struct {
	Name     string `json:"name"`
	Ordinal  int    `json:"ordinal"`
	Role     Role   `json:"role"`
	Phase    string `json:"phase"`
	Ready    bool   `json:"ready"`
	Restarts int32  `json:"restarts"`
	Node     string `json:"node,omitempty"`
	Host     string `json:"host"`
}

// ClaimStatus describes one data volume claim.
type ClaimStatus struct {
	Name         string `json:"name"`
	Ordinal      int    `json:"ordinal"`
	Phase        string `json:"phase"`
	Capacity     string `json:"capacity,omitempty"`
	StorageClass string `json:"storageClass,omitempty"`
	Volume       string `json:"volume,omitempty"`
	Orphaned     bool   `json:"orphaned"`
}

// Status is a snapshot of the deployment.
type Status struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Found     bool   `json:"found"`

	Desired       int32 `json:"desired"`
	ReadyReplicas int32 `json:"ready"`
	Current       int32 `json:"current"`
	Updated       int32 `json:"updated"`

	CurrentRevision string `json:"currentRevision,omitempty"`
	UpdateRevision  string `json:"updateRevision,omitempty"`

	Rollout         string `json:"rollout,omitempty"`
	RolloutComplete bool   `json:"rolloutComplete"`

	Pods    []PodStatus   `json:"pods"`
	Claims  []ClaimStatus `json:"claims"`
	Orphans []string      `json:"orphans,omitempty"`
}

// Collect reads the StatefulSet, its pods and its claims. A missing
// StatefulSet is not an error: Found is false and every claim is orphaned.
func Collect(ctx context.Context, c client.Client, namespace, name string) (*Status, error) {
	status := &Status{
		Name:      name,
		Namespace: namespace,
		Pods:      []PodStatus{},
		Claims:    []ClaimStatus{},
	}

	sts := &appsv1.StatefulSet{}
	err := c.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, sts)
	switch {
	case apierrors.IsNotFound(err):
	case err != nil:
		return nil, fmt.Errorf("failed to get statefulset %s/%s: %w", namespace, name, err)
	default:
		status.Found = true
		if sts.Spec.Replicas != nil {
			status.Desired = *sts.Spec.Replicas
		}
		status.ReadyReplicas = sts.Status.ReadyReplicas
		status.Current = sts.Status.CurrentReplicas
		status.Updated = sts.Status.UpdatedReplicas
		status.CurrentRevision = sts.Status.CurrentRevision
		status.UpdateRevision = sts.Status.UpdateRevision

		msg, done, err := k8s.RolloutStatus(sts)
		if err != nil {
			msg = err.Error()
		}
		status.Rollout = msg
		status.RolloutComplete = done && err == nil
	}

	selector := client.MatchingLabels(labels.Selector(name))

	pods := &corev1.PodList{}
	if err := c.List(ctx, pods, client.InNamespace(namespace), selector); err != nil {
		return nil, fmt.Errorf("failed to list pods in %s: %w", namespace, err)
	}
	for i := range pods.Items {
		if ps, ok := podStatus(name, &pods.Items[i]); ok {
			status.Pods = append(status.Pods, ps)
		}
	}
	sort.Slice(status.Pods, func(i, j int) bool { return status.Pods[i].Ordinal < status.Pods[j].Ordinal })

	claims := &corev1.PersistentVolumeClaimList{}
	if err := c.List(ctx, claims, client.InNamespace(namespace), selector); err != nil {
		return nil, fmt.Errorf("failed to list claims in %s: %w", namespace, err)
	}
	for i := range claims.Items {
		cs, ok := claimStatus(name, &claims.Items[i])
		if !ok {
			continue
		}
		cs.Orphaned = int32(cs.Ordinal) >= status.Desired
		status.Claims = append(status.Claims, cs)
	}
	sort.Slice(status.Claims, func(i, j int) bool { return status.Claims[i].Ordinal < status.Claims[j].Ordinal })

	for _, cs := range status.Claims {
		if cs.Orphaned {
			status.Orphans = append(status.Orphans, cs.Name)
		}
	}

	return status, nil
}

func podStatus(name string, pod *corev1.Pod) (PodStatus, bool) {
	ordinal, ok := naming.PodOrdinal(name, pod.Name)
	if !ok {
		return PodStatus{}, false
	}

	var restarts int32
	for _, cs := range pod.Status.ContainerStatuses {
		restarts += cs.RestartCount
	}

	return PodStatus{
		Name:     pod.Name,
		Ordinal:  ordinal,
		Role:     RoleForOrdinal(ordinal),
		Phase:    string(pod.Status.Phase),
		Ready:    isPodReady(pod),
		Restarts: restarts,
		Node:     pod.Spec.NodeName,
		Host:     naming.PodHost(name, ordinal),
	}, true
}

func claimStatus(name string, pvc *corev1.PersistentVolumeClaim) (ClaimStatus, bool) {
	ordinal, ok := naming.ClaimOrdinal(name, pvc.Name)
	if !ok {
		return ClaimStatus{}, false
	}

	cs := ClaimStatus{
		Name:    pvc.Name,
		Ordinal: ordinal,
		Phase:   string(pvc.Status.Phase),
		Volume:  pvc.Spec.VolumeName,
	}
	if capacity, ok := pvc.Status.Capacity[corev1.ResourceStorage]; ok {
		cs.Capacity = capacity.String()
	}
	if pvc.Spec.StorageClassName != nil {
		cs.StorageClass = *pvc.Spec.StorageClassName
	}
	return cs, true
}

// isPodReady checks if a pod is ready.
func isPodReady(pod *corev1.Pod) bool {
	if pod.Status.Phase != corev1.PodRunning {
		return false
	}

	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodReady &&
			condition.Status == corev1.ConditionTrue {
			return true
		}
	}

	return false
}

// Ready reports whether every desired replica is running, ready and on the
// update revision.
func (s *Status) Ready() bool {
	if !s.Found || s.Desired == 0 || s.ReadyReplicas < s.Desired || !s.RolloutComplete {
		return false
	}
	if len(s.Pods) != int(s.Desired) {
		return false
	}
	for _, pod := range s.Pods {
		if !pod.Ready {
			return false
		}
	}
	return true
}

// BoundClaims returns the number of claims in phase Bound.
func (s *Status) BoundClaims() int {
	n := 0
	for _, cs := range s.Claims {
		if cs.Phase == string(corev1.ClaimBound) {
			n++
		}
	}
	return n
}

// Summary returns a one-line description of the deployment.
func (s *Status) Summary() string {
	if !s.Found {
		if len(s.Claims) > 0 {
			return fmt.Sprintf("statefulset %s/%s not found, %d claims left behind", s.Namespace, s.Name, len(s.Claims))
		}
		return fmt.Sprintf("statefulset %s/%s not found", s.Namespace, s.Name)
	}

	summary := fmt.Sprintf("%s/%s: %d/%d ready, %d/%d claims bound", s.Namespace, s.Name,
		s.ReadyReplicas, s.Desired, s.BoundClaims(), len(s.Claims))
	if len(s.Orphans) > 0 {
		summary += fmt.Sprintf(", %d orphaned", len(s.Orphans))
	}
	return summary
}
