package naming

import (
	"fmt"
	"strconv"
	"strings"
)

// DataVolume is the name of the StatefulSet's VolumeClaimTemplate.
const DataVolume = "data"

// ConfigMap returns the name of the ConfigMap holding primary.cnf and replica.cnf.
func ConfigMap(name string) string {
	return name
}

// HeadlessService returns the name of the governing headless Service.
func HeadlessService(name string) string {
	return name
}

// ReadService returns the name of the load-balanced read Service.
func ReadService(name string) string {
	return fmt.Sprintf("%s-read", name)
}

// Pod returns the name of the pod with the given ordinal.
func Pod(name string, ordinal int) string {
	return fmt.Sprintf("%s-%d", name, ordinal)
}

// Claim returns the PersistentVolumeClaim name bound to the pod with the given ordinal.
func Claim(name string, ordinal int) string {
	return fmt.Sprintf("%s-%s-%d", DataVolume, name, ordinal)
}

// PodHost returns the stable DNS name of a pod, resolvable inside the namespace.
func PodHost(name string, ordinal int) string {
	return fmt.Sprintf("%s.%s", Pod(name, ordinal), HeadlessService(name))
}

// PodFQDN returns the cluster-wide DNS name of a pod.
func PodFQDN(name, namespace string, ordinal int) string {
	return fmt.Sprintf("%s.%s.svc.cluster.local", PodHost(name, ordinal), namespace)
}

// PrimaryHost returns the DNS name of ordinal 0, the replication source.
func PrimaryHost(name string) string {
	return PodHost(name, 0)
}

// ClientPod returns the name for a one-shot client pod.
func ClientPod(name, purpose string) string {
	return fmt.Sprintf("%s-client-%s", name, purpose)
}

// PodOrdinal extracts the ordinal from a pod name of the set.
// It returns false if podName does not belong to the set.
func PodOrdinal(name, podName string) (int, bool) {
	return ordinalAfter(name+"-", podName)
}

// ClaimOrdinal extracts the ordinal from a claim name of the set.
// It returns false if claimName was not created from the data template of the set.
func ClaimOrdinal(name, claimName string) (int, bool) {
	return ordinalAfter(DataVolume+"-"+name+"-", claimName)
}

func ordinalAfter(prefix, s string) (int, bool) {
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 || strconv.Itoa(n) != rest {
		return 0, false
	}
	return n, true
}
