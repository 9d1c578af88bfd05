package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/mysqlset/internal/config"
)

// saveAndRestoreInitFactories saves and restores init factory functions.
func saveAndRestoreInitFactories(t *testing.T) {
	origFileExists := fileExists
	origRunWizard := runWizard
	origSave := saveConfig

	t.Cleanup(func() {
		fileExists = origFileExists
		runWizard = origRunWizard
		saveConfig = origSave
	})
}

func TestInit_Defaults(t *testing.T) {
	saveAndRestoreInitFactories(t)

	fileExists = func(string) bool { return false }
	runWizard = func(context.Context) (*config.WizardResult, error) {
		t.Fatal("wizard must not run without --wizard")
		return nil, nil
	}
	var saved *config.Config
	var savedPath string
	saveConfig = func(cfg *config.Config, path string) error {
		saved, savedPath = cfg, path
		return nil
	}

	output := captureOutput(func() {
		require.NoError(t, Init(context.Background(), "mysqlset.yaml", false))
	})

	require.NotNil(t, saved)
	assert.Equal(t, "mysqlset.yaml", savedPath)
	assert.Equal(t, config.Default(), saved)
	assert.Contains(t, output, "Configuration saved!")
	assert.Contains(t, output, "StatefulSet:   mysql/mysql")
	assert.Contains(t, output, "Write host:    mysql-0.mysql")
	assert.Contains(t, output, "Read service:  mysql-read")
	assert.Contains(t, output, "10Gi per replica (cluster default)")
	assert.NotContains(t, output, "Warning")
}

func TestInit_Wizard(t *testing.T) {
	saveAndRestoreInitFactories(t)

	fileExists = func(string) bool { return true }
	runWizard = func(context.Context) (*config.WizardResult, error) {
		return &config.WizardResult{
			Name:         "db",
			Namespace:    "prod",
			Replicas:     5,
			StorageSize:  "50Gi",
			StorageClass: "fast",
		}, nil
	}
	var saved *config.Config
	saveConfig = func(cfg *config.Config, _ string) error {
		saved = cfg
		return nil
	}

	output := captureOutput(func() {
		require.NoError(t, Init(context.Background(), "prod.yaml", true))
	})

	require.NotNil(t, saved)
	assert.Equal(t, "db", saved.Name)
	assert.Equal(t, "prod", saved.Namespace)
	assert.Equal(t, int32(5), saved.Replicas)
	assert.Equal(t, "fast", saved.Storage.StorageClass)
	assert.Equal(t, config.DefaultImage, saved.Image)
	assert.Contains(t, output, "Warning: prod.yaml already exists")
	assert.Contains(t, output, "50Gi per replica (fast)")
}

func TestInit_WizardCanceled(t *testing.T) {
	saveAndRestoreInitFactories(t)

	fileExists = func(string) bool { return false }
	runWizard = func(context.Context) (*config.WizardResult, error) {
		return nil, errors.New("wizard canceled: user aborted")
	}
	saveConfig = func(*config.Config, string) error {
		t.Fatal("config must not be written")
		return nil
	}

	err := Init(context.Background(), "mysqlset.yaml", true)
	assert.EqualError(t, err, "wizard canceled: user aborted")
}

func TestInit_WriteError(t *testing.T) {
	saveAndRestoreInitFactories(t)

	fileExists = func(string) bool { return false }
	saveConfig = func(*config.Config, string) error { return errors.New("permission denied") }

	err := Init(context.Background(), "/readonly/mysqlset.yaml", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write config")
}
