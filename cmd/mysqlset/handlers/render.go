package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/imamik/mysqlset/internal/manifests"
)

// Render prints the manifests that apply would send, or writes them to
// outputPath.
func Render(ctx context.Context, opts Options, outputPath string) error {
	ctx, logger := withLogger(ctx, "render")

	cfg, err := loadConfig(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	data, err := manifests.Render(cfg)
	if err != nil {
		return fmt.Errorf("failed to render manifests: %w", err)
	}

	if outputPath == "" || outputPath == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	if err := writeFile(outputPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write manifests: %w", err)
	}
	logger.Info("wrote manifests", "path", outputPath, "bytes", len(data))
	return nil
}
