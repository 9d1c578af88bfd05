package k8s

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
)

// RolloutStatus evaluates a StatefulSet the way `kubectl rollout status` does.
// It returns a progress message, whether the rollout is complete, and an error
// for update strategies whose progress cannot be tracked.
func RolloutStatus(sts *appsv1.StatefulSet) (string, bool, error) {
	if sts.Spec.UpdateStrategy.Type != appsv1.RollingUpdateStatefulSetStrategyType {
		return "", true, fmt.Errorf("rollout status is only available for %s strategy type", appsv1.RollingUpdateStatefulSetStrategyType)
	}

	if sts.Status.ObservedGeneration == 0 || sts.Generation > sts.Status.ObservedGeneration {
		return "Waiting for statefulset spec update to be observed...", false, nil
	}

	if sts.Spec.Replicas != nil && sts.Status.ReadyReplicas < *sts.Spec.Replicas {
		return fmt.Sprintf("Waiting for %d pods to be ready...", *sts.Spec.Replicas-sts.Status.ReadyReplicas), false, nil
	}

	// The API server defaults the partition to 0, so it is set on every live
	// RollingUpdate StatefulSet. Only a positive partition ends the rollout early.
	if ru := sts.Spec.UpdateStrategy.RollingUpdate; ru != nil && ru.Partition != nil {
		if sts.Spec.Replicas != nil {
			target := *sts.Spec.Replicas - *ru.Partition
			if sts.Status.UpdatedReplicas < target {
				return fmt.Sprintf("Waiting for partitioned roll out to finish: %d out of %d new pods have been updated...",
					sts.Status.UpdatedReplicas, target), false, nil
			}
		}
		if *ru.Partition > 0 {
			return fmt.Sprintf("partitioned roll out complete: %d new pods have been updated...", sts.Status.UpdatedReplicas), true, nil
		}
	}

	if sts.Status.UpdateRevision != sts.Status.CurrentRevision {
		return fmt.Sprintf("waiting for statefulset rolling update to complete %d pods at revision %s...",
			sts.Status.UpdatedReplicas, sts.Status.UpdateRevision), false, nil
	}

	return fmt.Sprintf("statefulset rolling update complete %d pods at revision %s...",
		sts.Status.CurrentReplicas, sts.Status.CurrentRevision), true, nil
}
