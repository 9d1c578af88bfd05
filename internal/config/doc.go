// Package config defines the configuration record of one replicated MySQL
// StatefulSet deployment.
//
// The [Config] struct is read from mysqlset.yaml and carries everything the
// manifests package needs to render the ConfigMap, the two Services and the
// StatefulSet: names, replica count, images, per-replica storage and the
// primary/replica MySQL configuration text. Timeouts for the waiting
// operations come from the environment, see [LoadTimeouts].
package config
