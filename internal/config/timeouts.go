package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	Rollout           time.Duration // Timeout for a StatefulSet rollout to complete
	NamespaceDelete   time.Duration // Timeout for namespace termination
	ClientPod         time.Duration // Timeout for a one-shot mysql client pod
	Backup            time.Duration // Timeout for streaming a dump out of a replica
	PollInterval      time.Duration // Interval between status polls
	RetryMaxAttempts  int           // Maximum number of retry attempts for transient API errors
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - MYSQLSET_TIMEOUT_ROLLOUT (default: 10m)
//   - MYSQLSET_TIMEOUT_NAMESPACE_DELETE (default: 5m)
//   - MYSQLSET_TIMEOUT_CLIENT_POD (default: 3m)
//   - MYSQLSET_TIMEOUT_BACKUP (default: 30m)
//   - MYSQLSET_POLL_INTERVAL (default: 2s)
//   - MYSQLSET_RETRY_MAX_ATTEMPTS (default: 5)
//   - MYSQLSET_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Rollout:           parseDuration("MYSQLSET_TIMEOUT_ROLLOUT", 10*time.Minute),
		NamespaceDelete:   parseDuration("MYSQLSET_TIMEOUT_NAMESPACE_DELETE", 5*time.Minute),
		ClientPod:         parseDuration("MYSQLSET_TIMEOUT_CLIENT_POD", 3*time.Minute),
		Backup:            parseDuration("MYSQLSET_TIMEOUT_BACKUP", 30*time.Minute),
		PollInterval:      parseDuration("MYSQLSET_POLL_INTERVAL", 2*time.Second),
		RetryMaxAttempts:  parseInt("MYSQLSET_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("MYSQLSET_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}

	return i
}
