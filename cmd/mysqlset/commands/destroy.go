package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mysqlset/cmd/mysqlset/handlers"
)

// Destroy returns the destroy command.
func Destroy(g *globalFlags) *cobra.Command {
	var do handlers.DestroyOptions

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the deployment",
		Long: `Delete the deployment.

By default the namespace is deleted together with everything in it,
including the persistent volume claims. Depending on the reclaim policy of
the storage class the volumes and their data are deleted as well.

With --keep-namespace only the StatefulSet, both Services and the ConfigMap
are deleted, followed by the claims unless --keep-claims is also set.

Examples:
  mysqlset destroy
  mysqlset destroy --keep-namespace --keep-claims

WARNING: Without --keep-claims all data is lost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), g.opts, do)
		},
	}

	cmd.Flags().BoolVar(&do.KeepNamespace, "keep-namespace", false, "Delete only the applied objects, not the namespace")
	cmd.Flags().BoolVar(&do.KeepClaims, "keep-claims", false, "Keep persistent volume claims (requires --keep-namespace)")

	return cmd
}
