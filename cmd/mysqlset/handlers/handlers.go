// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/mysqlset/internal/backup"
	"github.com/imamik/mysqlset/internal/config"
	"github.com/imamik/mysqlset/internal/k8s"
	"github.com/imamik/mysqlset/internal/platform/s3"
	"github.com/imamik/mysqlset/internal/util/retry"
)

// FieldManager owns every field mysqlset applies.
const FieldManager = "mysqlset"

// Options are the global flags shared by every command.
type Options struct {
	// ConfigPath is the mysqlset.yaml to load. Empty searches the working
	// directory and its parents, then falls back to defaults.
	ConfigPath string
	Kubeconfig string
	Context    string
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads and validates a config file.
	loadConfigFile = config.Load

	// findConfigFile locates mysqlset.yaml.
	findConfigFile = config.FindConfigFile

	// saveConfig writes a config file.
	saveConfig = config.Save

	// runWizard runs the interactive init wizard.
	runWizard = config.RunWizard

	// loadTimeouts reads timeouts from the environment.
	loadTimeouts = config.LoadTimeouts

	// writeFile writes data to a file.
	writeFile = os.WriteFile

	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// newKubeClient creates the typed/dynamic Kubernetes client.
	newKubeClient = func(opts Options, t *config.Timeouts) (k8s.Client, error) {
		restConfig, err := k8s.LoadRESTConfig(opts.Kubeconfig, opts.Context)
		if err != nil {
			return nil, err
		}
		return k8s.NewFromRESTConfig(restConfig,
			k8s.WithPollInterval(t.PollInterval),
			k8s.WithRetryOptions(
				retry.WithMaxRetries(t.RetryMaxAttempts),
				retry.WithInitialDelay(t.RetryInitialDelay),
			),
		)
	}

	// newRuntimeClient creates the controller-runtime client used for reads.
	newRuntimeClient = func(opts Options) (client.Client, error) {
		restConfig, err := k8s.LoadRESTConfig(opts.Kubeconfig, opts.Context)
		if err != nil {
			return nil, err
		}
		c, err := client.New(restConfig, client.Options{})
		if err != nil {
			return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
		}
		return c, nil
	}

	// newBackupStore creates the object storage client for dumps.
	newBackupStore = func(ctx context.Context, cfg config.BackupConfig, accessKey, secretKey string) (backup.Store, error) {
		return s3.NewClient(ctx, cfg.Endpoint, cfg.Region, accessKey, secretKey, cfg.PathStyle)
	}

	// isInteractiveTTY reports whether stdout is a terminal.
	isInteractiveTTY = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
)

// loadConfig loads the config at path. With an empty path it searches for
// mysqlset.yaml and uses the defaults when none exists.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path == "" {
		found, err := findConfigFile()
		if err != nil {
			log.FromContext(ctx).V(1).Info("no config file found, using defaults")
			cfg := config.Default()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("configuration validation failed: %w", err)
			}
			return cfg, nil
		}
		path = found
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	log.FromContext(ctx).V(1).Info("loaded config", "path", path, "name", cfg.Name, "namespace", cfg.Namespace)
	return cfg, nil
}

// withLogger attaches the command's named logger to ctx.
func withLogger(ctx context.Context, command string) (context.Context, logr.Logger) {
	logger := ctrl.Log.WithName(command)
	return log.IntoContext(ctx, logger), logger
}
