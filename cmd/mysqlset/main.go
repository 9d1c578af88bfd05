// Package main is the entry point for the mysqlset CLI.
//
// mysqlset deploys a replicated MySQL cluster on Kubernetes as a
// StatefulSet with a headless Service for stable pod DNS names, a read
// Service balancing reads across all pods, and one PersistentVolumeClaim
// per pod.
//
// Commands: init, render, apply, status, scale, test, backup, destroy, doctor.
//
// For detailed usage information, run:
//
//	mysqlset --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/mysqlset/cmd/mysqlset/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
