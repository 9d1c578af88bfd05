package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

//nolint:paralleltest // uses t.Setenv
func TestLoadTimeouts_Defaults(t *testing.T) {
	for _, key := range []string{
		"MYSQLSET_TIMEOUT_ROLLOUT",
		"MYSQLSET_TIMEOUT_NAMESPACE_DELETE",
		"MYSQLSET_TIMEOUT_CLIENT_POD",
		"MYSQLSET_TIMEOUT_BACKUP",
		"MYSQLSET_POLL_INTERVAL",
		"MYSQLSET_RETRY_MAX_ATTEMPTS",
		"MYSQLSET_RETRY_INITIAL_DELAY",
	} {
		t.Setenv(key, "")
	}

	timeouts := LoadTimeouts()

	assert.Equal(t, 10*time.Minute, timeouts.Rollout)
	assert.Equal(t, 5*time.Minute, timeouts.NamespaceDelete)
	assert.Equal(t, 3*time.Minute, timeouts.ClientPod)
	assert.Equal(t, 30*time.Minute, timeouts.Backup)
	assert.Equal(t, 2*time.Second, timeouts.PollInterval)
	assert.Equal(t, 5, timeouts.RetryMaxAttempts)
	assert.Equal(t, time.Second, timeouts.RetryInitialDelay)
}

//nolint:paralleltest // uses t.Setenv
func TestLoadTimeouts_FromEnv(t *testing.T) {
	t.Setenv("MYSQLSET_TIMEOUT_ROLLOUT", "20m")
	t.Setenv("MYSQLSET_TIMEOUT_CLIENT_POD", "45s")
	t.Setenv("MYSQLSET_POLL_INTERVAL", "500ms")
	t.Setenv("MYSQLSET_RETRY_MAX_ATTEMPTS", "2")

	timeouts := LoadTimeouts()

	assert.Equal(t, 20*time.Minute, timeouts.Rollout)
	assert.Equal(t, 45*time.Second, timeouts.ClientPod)
	assert.Equal(t, 500*time.Millisecond, timeouts.PollInterval)
	assert.Equal(t, 2, timeouts.RetryMaxAttempts)
}

//nolint:paralleltest // uses t.Setenv
func TestLoadTimeouts_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("MYSQLSET_TIMEOUT_ROLLOUT", "soon")
	t.Setenv("MYSQLSET_POLL_INTERVAL", "-1s")
	t.Setenv("MYSQLSET_RETRY_MAX_ATTEMPTS", "many")

	timeouts := LoadTimeouts()

	assert.Equal(t, 10*time.Minute, timeouts.Rollout)
	assert.Equal(t, 2*time.Second, timeouts.PollInterval)
	assert.Equal(t, 5, timeouts.RetryMaxAttempts)
}
