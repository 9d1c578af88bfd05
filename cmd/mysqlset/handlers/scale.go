package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/mysqlset/internal/k8s"
	"github.com/imamik/mysqlset/internal/util/labels"
	"github.com/imamik/mysqlset/internal/util/naming"
)

// ScaleOptions are the flags of the scale command.
type ScaleOptions struct {
	Replicas    int32
	PruneClaims bool
	NoWait      bool
}

// Scale changes the replica count of the StatefulSet.
//
// Scaling down leaves the claims of removed ordinals in place so that
// scaling back up reattaches the same data. PruneClaims deletes them once
// the rollout has finished.
func Scale(ctx context.Context, opts Options, so ScaleOptions) error {
	ctx, logger := withLogger(ctx, "scale")

	if so.Replicas < 1 {
		return errors.New("replicas must be at least 1, use destroy to remove the deployment")
	}
	if so.PruneClaims && so.NoWait {
		return errors.New("--prune-claims needs the rollout to finish and cannot be combined with --no-wait")
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

	sts, err := kc.GetStatefulSet(ctx, cfg.Namespace, cfg.Name)
	if err != nil {
		return err
	}
	current := int32(1)
	if sts.Spec.Replicas != nil {
		current = *sts.Spec.Replicas
	}

	if current != so.Replicas {
		if err := kc.ScaleStatefulSet(ctx, cfg.Namespace, cfg.Name, so.Replicas); err != nil {
			return err
		}
		fmt.Printf("statefulset %s/%s scaled from %d to %d\n", cfg.Namespace, cfg.Name, current, so.Replicas)
	} else {
		fmt.Printf("statefulset %s/%s already has %d replicas\n", cfg.Namespace, cfg.Name, current)
	}

	if cfg.Replicas != so.Replicas {
		logger.Info("config file still sets a different replica count, the next apply will restore it",
			"config", cfg.Replicas, "scaled", so.Replicas)
	}

	if so.NoWait {
		return nil
	}

	if err := kc.WaitForRollout(ctx, cfg.Namespace, cfg.Name, timeouts.Rollout, printProgress); err != nil {
		return err
	}

	if so.PruneClaims {
		return pruneClaims(ctx, kc, cfg.Namespace, cfg.Name, so.Replicas, timeouts.Rollout)
	}
	return nil
}

// pruneClaims deletes the claims of ordinals at or above replicas once the
// pods of those ordinals are gone.
func pruneClaims(ctx context.Context, kc k8s.Client, namespace, name string, replicas int32, timeout time.Duration) error {
	claims, err := kc.ListClaims(ctx, namespace, labels.SelectorString(name))
	if err != nil {
		return err
	}

	var doomed, pods []string
	for _, claim := range claims {
		ordinal, ok := naming.ClaimOrdinal(name, claim.Name)
		if !ok || ordinal < int(replicas) {
			continue
		}
		doomed = append(doomed, claim.Name)
		pods = append(pods, naming.Pod(name, ordinal))
	}
	if len(doomed) == 0 {
		fmt.Println("no claims to prune")
		return nil
	}

	printProgress(fmt.Sprintf("Waiting for %d removed pods to terminate...", len(pods)))
	if err := kc.WaitForPodsDeleted(ctx, namespace, pods, timeout); err != nil {
		return err
	}

	for _, claim := range doomed {
		if err := kc.DeleteClaim(ctx, namespace, claim); err != nil {
			return err
		}
		fmt.Printf("persistentvolumeclaim %s deleted\n", claim)
	}
	return nil
}
