// Package inventory collects a read-only view of a MySQL StatefulSet
// deployment: replica counts and revisions, the pods by ordinal, and the
// PersistentVolumeClaims including those left behind by a scale-down.
//
// It also exports the view as Prometheus gauges.
package inventory
