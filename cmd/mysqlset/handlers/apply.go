package handlers

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/mysqlset/internal/config"
	"github.com/imamik/mysqlset/internal/k8s"
	"github.com/imamik/mysqlset/internal/manifests"
	"github.com/imamik/mysqlset/internal/util/labels"
	"github.com/imamik/mysqlset/internal/util/naming"
)

// Apply creates the namespace, server-side applies the ConfigMap, both
// Services and the StatefulSet, then waits for the rollout.
//
// Re-running it is safe: every object is applied with a forced field
// manager, so unchanged objects are left as they are.
func Apply(ctx context.Context, opts Options, noWait bool) error {
	ctx, logger := withLogger(ctx, "apply")

	cfg, err := loadConfig(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	data, err := manifests.Render(cfg)
	if err != nil {
		return fmt.Errorf("failed to render manifests: %w", err)
	}

	timeouts := loadTimeouts()
	kc, err := newKubeClient(opts, timeouts)
	if err != nil {
		return err
	}

	warnStorageClass(ctx, kc, cfg, logger)

	if err := kc.EnsureNamespace(ctx, cfg.Namespace, labels.Namespace()); err != nil {
		return err
	}

	if err := kc.ApplyManifests(ctx, data, FieldManager); err != nil {
		return err
	}
	fmt.Printf("Applied %s, %s, %s and statefulset %s in namespace %s\n",
		naming.ConfigMap(cfg.Name), naming.HeadlessService(cfg.Name), naming.ReadService(cfg.Name),
		cfg.Name, cfg.Namespace)

	if noWait {
		return nil
	}

	if err := kc.WaitForRollout(ctx, cfg.Namespace, cfg.Name, timeouts.Rollout, printProgress); err != nil {
		return err
	}
	fmt.Printf("statefulset %s/%s rolled out with %d replicas\n", cfg.Namespace, cfg.Name, cfg.Replicas)
	return nil
}

// warnStorageClass logs when the claims are unlikely to bind.
func warnStorageClass(ctx context.Context, kc k8s.Client, cfg *config.Config, logger logr.Logger) {
	if cfg.Storage.StorageClass != "" {
		exists, err := kc.StorageClassExists(ctx, cfg.Storage.StorageClass)
		if err == nil && !exists {
			logger.Info("storage class not found, claims will stay Pending", "storageClass", cfg.Storage.StorageClass)
		}
		return
	}

	def, err := kc.DefaultStorageClass(ctx)
	if err == nil && def == "" {
		logger.Info("cluster has no default storage class, claims will stay Pending")
	}
}

// printProgress prints rollout messages as kubectl rollout status does.
func printProgress(message string) {
	fmt.Println(message)
}
