package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/mysqlset/internal/manifests"
	"github.com/imamik/mysqlset/internal/util/labels"
)

// DestroyOptions are the flags of the destroy command.
type DestroyOptions struct {
	KeepNamespace bool
	KeepClaims    bool
}

// Destroy removes the deployment.
//
// By default the whole namespace is deleted, which takes every claim and
// therefore all data with it. KeepNamespace deletes only the applied
// objects, and KeepClaims additionally leaves the claims in place.
func Destroy(ctx context.Context, opts Options, do DestroyOptions) error {
	ctx, logger := withLogger(ctx, "destroy")

	if do.KeepClaims && !do.KeepNamespace {
		return errors.New("--keep-claims requires --keep-namespace, claims are deleted with their namespace")
	}

	cfg, err := loadConfig(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	timeouts := loadTimeouts()
	kc, err := newKubeClient(opts, timeouts)
	if err != nil {
		return err
	}

	if !do.KeepNamespace {
		if err := kc.DeleteNamespace(ctx, cfg.Namespace); err != nil {
			return err
		}
		logger.Info("waiting for namespace deletion", "namespace", cfg.Namespace)
		if err := kc.WaitForNamespaceDeleted(ctx, cfg.Namespace, timeouts.NamespaceDelete); err != nil {
			return err
		}
		fmt.Printf("namespace %s deleted\n", cfg.Namespace)
		return nil
	}

	data, err := manifests.Render(cfg)
	if err != nil {
		return fmt.Errorf("failed to render manifests: %w", err)
	}
	if err := kc.DeleteManifests(ctx, data); err != nil {
		return err
	}
	fmt.Printf("deleted statefulset %s, its services and configmap in namespace %s\n", cfg.Name, cfg.Namespace)

	if do.KeepClaims {
		fmt.Println("claims kept, a new apply reattaches them")
		return nil
	}

	claims, err := kc.ListClaims(ctx, cfg.Namespace, labels.SelectorString(cfg.Name))
	if err != nil {
		return err
	}
	for _, claim := range claims {
		if err := kc.DeleteClaim(ctx, cfg.Namespace, claim.Name); err != nil {
			return err
		}
		fmt.Printf("persistentvolumeclaim %s deleted\n", claim.Name)
	}
	return nil
}
