package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mysqlset/cmd/mysqlset/handlers"
)

// Scale returns the command that changes the replica count.
func Scale(g *globalFlags) *cobra.Command {
	var so handlers.ScaleOptions

	cmd := &cobra.Command{
		Use:   "scale",
		Short: "Change the number of replicas",
		Long: `Change the number of MySQL pods.

Scaling up adds pods in ordinal order; each new replica clones from the
previous pod. Scaling down removes the highest ordinals first and keeps
their claims, so scaling back up reuses the same data. Use --prune-claims
to delete those claims after the rollout.

Examples:
  mysqlset scale --replicas 5
  mysqlset scale --replicas 3 --prune-claims`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Scale(cmd.Context(), g.opts, so)
		},
	}

	cmd.Flags().Int32VarP(&so.Replicas, "replicas", "r", 0, "Desired number of replicas")
	cmd.Flags().BoolVar(&so.PruneClaims, "prune-claims", false, "Delete claims of removed ordinals after the rollout")
	cmd.Flags().BoolVar(&so.NoWait, "no-wait", false, "Return without waiting for the rollout")
	_ = cmd.MarkFlagRequired("replicas")

	return cmd
}
