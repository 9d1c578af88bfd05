package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mysqlset/cmd/mysqlset/handlers"
)

// Doctor returns the command for checking the config and the cluster.
func Doctor(g *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration and the cluster",
		Long: `Check that the deployment can run.

  - Validates the configuration file
  - Connects to the API server
  - Checks the storage class the claims will use
  - Reports the rollout if the StatefulSet exists
  - Checks backup credentials when a bucket is configured
  - Looks for kubectl and mysql on PATH`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), g.opts, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
