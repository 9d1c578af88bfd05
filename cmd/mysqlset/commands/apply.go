package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mysqlset/cmd/mysqlset/handlers"
)

// Apply returns the command that deploys or updates the StatefulSet.
func Apply(g *globalFlags) *cobra.Command {
	var noWait bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Deploy or update the MySQL StatefulSet",
		Long: `Create the namespace and apply the ConfigMap, the headless Service,
the read Service and the StatefulSet with server-side apply.

Pods are created one at a time in ordinal order. apply waits until every
replica is ready unless --no-wait is set. Re-running apply is safe.

Examples:
  mysqlset apply
  mysqlset apply -c production.yaml --no-wait`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), g.opts, noWait)
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Return after applying without waiting for the rollout")

	return cmd
}
