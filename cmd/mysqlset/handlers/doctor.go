package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/imamik/mysqlset/internal/backup"
	"github.com/imamik/mysqlset/internal/config"
	"github.com/imamik/mysqlset/internal/k8s"
	"github.com/imamik/mysqlset/internal/ui/tui"
	"github.com/imamik/mysqlset/internal/util/prerequisites"
)

// checkTools checks the local client tools.
var checkTools = prerequisites.CheckDoctor

// Doctor validates the config and checks that the cluster can run the
// deployment.
func Doctor(ctx context.Context, opts Options, jsonOutput bool) error {
	ctx, _ = withLogger(ctx, "doctor")

	checks, cfg := doctorChecks(ctx, opts)

	if jsonOutput {
		data, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal checks: %w", err)
		}
		fmt.Println(string(data))
	} else {
		title := "mysqlset doctor"
		if cfg != nil {
			title = fmt.Sprintf("mysqlset doctor: %s/%s", cfg.Namespace, cfg.Name)
		}
		if isInteractiveTTY() {
			fmt.Print(tui.RenderChecks(title, checks))
		} else {
			fmt.Println(title)
			fmt.Println()
			for _, c := range checks {
				fmt.Printf("  %-5s %-22s %s\n", c.State, c.Name, c.Detail)
			}
		}
	}

	if failed, _ := tui.CountChecks(checks); failed > 0 {
		return fmt.Errorf("doctor found %d problem(s)", failed)
	}
	return nil
}

// doctorChecks runs every check. Cluster checks are skipped when the config
// cannot be loaded or the API server cannot be reached.
func doctorChecks(ctx context.Context, opts Options) ([]tui.Check, *config.Config) {
	var checks []tui.Check

	cfg, err := loadConfig(ctx, opts.ConfigPath)
	if err != nil {
		checks = append(checks, tui.Check{Name: "config", State: tui.CheckFail, Detail: err.Error()})
		return append(checks, toolChecks()...), nil
	}
	checks = append(checks, tui.Check{
		Name:   "config",
		State:  tui.CheckOK,
		Detail: fmt.Sprintf("%s/%s, %d replicas, %s per replica", cfg.Namespace, cfg.Name, cfg.Replicas, cfg.Storage.Size),
	})

	checks = append(checks, clusterChecks(ctx, opts, cfg)...)
	checks = append(checks, backupChecks(ctx, cfg)...)
	checks = append(checks, toolChecks()...)
	return checks, cfg
}

func clusterChecks(ctx context.Context, opts Options, cfg *config.Config) []tui.Check {
	kc, err := newKubeClient(opts, loadTimeouts())
	if err != nil {
		return []tui.Check{{Name: "kubeconfig", State: tui.CheckFail, Detail: err.Error()}}
	}

	version, err := kc.ServerVersion(ctx)
	if err != nil {
		return []tui.Check{{Name: "api server", State: tui.CheckFail, Detail: err.Error()}}
	}
	checks := []tui.Check{{Name: "api server", State: tui.CheckOK, Detail: version}}

	checks = append(checks, storageClassCheck(ctx, kc, cfg))

	sts, err := kc.GetStatefulSet(ctx, cfg.Namespace, cfg.Name)
	switch {
	case apierrors.IsNotFound(err):
		checks = append(checks, tui.Check{Name: "deployment", State: tui.CheckWarn, Detail: "not deployed yet, run mysqlset apply"})
	case err != nil:
		checks = append(checks, tui.Check{Name: "deployment", State: tui.CheckFail, Detail: err.Error()})
	default:
		msg, done, err := k8s.RolloutStatus(sts)
		state := tui.CheckOK
		if err != nil {
			state, msg = tui.CheckFail, err.Error()
		} else if !done {
			state = tui.CheckWarn
		}
		checks = append(checks, tui.Check{Name: "deployment", State: state, Detail: msg})
	}

	return checks
}

func storageClassCheck(ctx context.Context, kc k8s.Client, cfg *config.Config) tui.Check {
	check := tui.Check{Name: "storage class"}

	if name := cfg.Storage.StorageClass; name != "" {
		exists, err := kc.StorageClassExists(ctx, name)
		switch {
		case err != nil:
			check.State, check.Detail = tui.CheckFail, err.Error()
		case !exists:
			check.State, check.Detail = tui.CheckFail, fmt.Sprintf("%s not found, claims would stay Pending", name)
		default:
			check.State, check.Detail = tui.CheckOK, name
		}
		return check
	}

	def, err := kc.DefaultStorageClass(ctx)
	switch {
	case err != nil:
		check.State, check.Detail = tui.CheckFail, err.Error()
	case def == "":
		check.State, check.Detail = tui.CheckFail, "no default storage class, set storage.storage_class"
	default:
		check.State, check.Detail = tui.CheckOK, def+" (default)"
	}
	return check
}

func backupChecks(ctx context.Context, cfg *config.Config) []tui.Check {
	if !cfg.Backup.Enabled() {
		return nil
	}
	accessKey, secretKey, err := backup.Credentials()
	if err != nil {
		return []tui.Check{{Name: "backup credentials", State: tui.CheckWarn, Detail: err.Error()}}
	}
	checks := []tui.Check{{Name: "backup credentials", State: tui.CheckOK, Detail: "s3://" + cfg.Backup.Bucket}}

	bucket := tui.Check{Name: "backup bucket"}
	store, err := newBackupStore(ctx, cfg.Backup, accessKey, secretKey)
	if err != nil {
		bucket.State, bucket.Detail = tui.CheckFail, err.Error()
		return append(checks, bucket)
	}
	switch exists, err := store.BucketExists(ctx, cfg.Backup.Bucket); {
	case err != nil:
		bucket.State, bucket.Detail = tui.CheckFail, err.Error()
	case !exists:
		bucket.State, bucket.Detail = tui.CheckWarn, cfg.Backup.Bucket+" is created by the first backup"
	default:
		bucket.State, bucket.Detail = tui.CheckOK, cfg.Backup.Bucket
	}
	return append(checks, bucket)
}

func toolChecks() []tui.Check {
	results := checkTools()

	checks := make([]tui.Check, 0, len(results.Results))
	for _, r := range results.Results {
		c := tui.Check{Name: r.Tool.Name, State: tui.CheckOK, Detail: r.Version}
		if !r.Found {
			c.State = tui.CheckWarn
			c.Detail = fmt.Sprintf("not found (optional, %s)", r.Tool.InstallURL)
			if r.Tool.Required {
				c.State = tui.CheckFail
			}
		} else if c.Detail == "" {
			c.Detail = r.Path
		}
		checks = append(checks, c)
	}
	return checks
}
