package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mysqlset/cmd/mysqlset/handlers"
)

// Status returns the command that shows pods and claims.
func Status(g *globalFlags) *cobra.Command {
	var so handlers.StatusOptions

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pods and persistent volume claims",
		Long: `Show the StatefulSet rollout, its pods and their claims.

Claims whose ordinal is at or above the replica count are marked orphaned.
They were left behind by a scale-down and are reattached by a scale-up.

Examples:
  mysqlset status
  mysqlset status --watch
  mysqlset status --until-ready
  mysqlset status --watch --metrics-addr :9090
  mysqlset status --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), g.opts, so)
		},
	}

	cmd.Flags().BoolVarP(&so.Watch, "watch", "w", false, "Keep refreshing until interrupted")
	cmd.Flags().BoolVar(&so.UntilReady, "until-ready", false, "Keep refreshing until every replica is ready")
	cmd.Flags().BoolVar(&so.JSON, "json", false, "Output in JSON format")
	cmd.Flags().StringVar(&so.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while watching")

	return cmd
}
