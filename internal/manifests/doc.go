// Package manifests renders the Kubernetes objects of a replicated MySQL
// deployment: a ConfigMap with the primary and replica conf.d snippets, a
// headless Service for stable per-pod DNS, a read Service load-balancing
// across all pods, and the StatefulSet with its data VolumeClaimTemplate.
//
// Templates are embedded and rendered with text/template. The result is a
// multi-document YAML stream in apply order.
package manifests
