package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/mysqlset/internal/config"
	"github.com/imamik/mysqlset/internal/util/naming"
)

// Init writes a configuration file, either with the defaults or from the
// interactive wizard.
func Init(ctx context.Context, outputPath string, wizard bool) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	cfg := config.Default()
	if wizard {
		result, err := runWizard(ctx)
		if err != nil {
			return err
		}
		cfg = result.ToConfig()
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := saveConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

// printInitSuccess prints a summary of the written config and next steps.
func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Deployment Summary")
	fmt.Println("------------------")
	fmt.Printf("  StatefulSet:   %s/%s\n", cfg.Namespace, cfg.Name)
	fmt.Printf("  Replicas:      %d (primary %s)\n", cfg.Replicas, naming.Pod(cfg.Name, 0))
	fmt.Printf("  Write host:    %s\n", naming.PrimaryHost(cfg.Name))
	fmt.Printf("  Read service:  %s\n", naming.ReadService(cfg.Name))
	storageClass := cfg.Storage.StorageClass
	if storageClass == "" {
		storageClass = "cluster default"
	}
	fmt.Printf("  Storage:       %s per replica (%s)\n", cfg.Storage.Size, storageClass)
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Check the cluster:      mysqlset doctor")
	fmt.Println("  2. Review the manifests:   mysqlset render")
	fmt.Println("  3. Deploy:                 mysqlset apply")
	fmt.Println()
}
