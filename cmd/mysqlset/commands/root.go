// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/imamik/mysqlset/cmd/mysqlset/handlers"
)

// globalFlags holds the persistent flags of the root command.
type globalFlags struct {
	opts    handlers.Options
	verbose bool
}

// Root returns the root command for the mysqlset CLI.
func Root() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "mysqlset",
		Short: "Run a replicated MySQL StatefulSet on Kubernetes",
		Long: `mysqlset deploys a primary/replica MySQL cluster as a StatefulSet.

Ordinal 0 is the primary and takes writes through <name>-0.<name>.
Every other ordinal clones its data from the previous pod and replicates
from the primary. Reads are balanced across all pods by <name>-read.
Each pod keeps its PersistentVolumeClaim across restarts and scaling.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogging(g.verbose)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&g.opts.ConfigPath, "config", "c", "", "Path to configuration file (default: search for mysqlset.yaml)")
	flags.StringVar(&g.opts.Kubeconfig, "kubeconfig", "", "Path to kubeconfig (default: KUBECONFIG or ~/.kube/config)")
	flags.StringVar(&g.opts.Context, "context", "", "Kubeconfig context to use")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")

	// Lifecycle
	cmd.AddCommand(Init())
	cmd.AddCommand(Render(g))
	cmd.AddCommand(Apply(g))
	cmd.AddCommand(Status(g))
	cmd.AddCommand(Scale(g))
	cmd.AddCommand(Destroy(g))

	// Operations
	cmd.AddCommand(Test(g))
	cmd.AddCommand(Backup(g))
	cmd.AddCommand(Doctor(g))

	// Utility
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// setupLogging installs the zap logger behind controller-runtime's logr
// facade. DEBUG=true has the same effect as --verbose.
func setupLogging(verbose bool) {
	debug := verbose || os.Getenv("DEBUG") == "true"
	opts := zap.Options{
		Development: debug,
		DestWriter:  os.Stderr,
	}
	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
}
