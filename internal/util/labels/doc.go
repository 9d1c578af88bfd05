// Package labels provides consistent labeling for the Kubernetes objects of a
// MySQL StatefulSet deployment.
//
// Selector labels are the immutable subset shared by the StatefulSet selector,
// the pod template and both Services; the StatefulSet controller copies them
// onto every claim created from the data template. Common labels add the
// app.kubernetes.io recommended keys on top.
package labels
