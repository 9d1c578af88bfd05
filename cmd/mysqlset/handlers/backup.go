package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/imamik/mysqlset/internal/backup"
)

// Backup dumps all databases to object storage, or lists earlier dumps.
func Backup(ctx context.Context, opts Options, list bool) error {
	ctx, logger := withLogger(ctx, "backup")

	cfg, err := loadConfig(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	if !cfg.Backup.Enabled() {
		return errors.New("no backup bucket configured, set backup.bucket in the config file")
	}

	accessKey, secretKey, err := backup.Credentials()
	if err != nil {
		return err
	}

	store, err := newBackupStore(ctx, cfg.Backup, accessKey, secretKey)
	if err != nil {
		return err
	}

	timeouts := loadTimeouts()
	runner := &backup.Runner{
		Store:   store,
		Config:  cfg,
		Timeout: timeouts.Backup,
	}

	if list {
		dumps, err := runner.List(ctx)
		if err != nil {
			return err
		}
		if len(dumps) == 0 {
			fmt.Printf("no dumps under s3://%s/%s\n", cfg.Backup.Bucket, backup.Prefix(cfg))
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "KEY\tSIZE\tLAST MODIFIED")
		for _, d := range dumps {
			fmt.Fprintf(w, "%s\t%d\t%s\n", d.Key, d.Size, d.LastModified.UTC().Format(time.RFC3339))
		}
		return w.Flush()
	}

	kc, err := newKubeClient(opts, timeouts)
	if err != nil {
		return err
	}
	runner.Exec = kc

	sts, err := kc.GetStatefulSet(ctx, cfg.Namespace, cfg.Name)
	if err != nil {
		return err
	}
	replicas := int32(1)
	if sts.Spec.Replicas != nil {
		replicas = *sts.Spec.Replicas
	}

	result, err := runner.Run(ctx, replicas)
	if err != nil {
		return err
	}
	logger.V(1).Info("backup finished", "source", result.Source)
	fmt.Printf("Uploaded %d bytes from %s to s3://%s/%s\n", result.Size, result.Source, result.Bucket, result.Key)
	return nil
}
