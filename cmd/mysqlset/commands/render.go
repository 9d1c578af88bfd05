package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mysqlset/cmd/mysqlset/handlers"
)

// Render returns the command that prints the manifests.
func Render(g *globalFlags) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the Kubernetes manifests",
		Long: `Print the ConfigMap, Services and StatefulSet that apply would send.

The output is a multi-document YAML stream that kubectl apply -f accepts.

Examples:
  mysqlset render
  mysqlset render -o mysql.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Render(cmd.Context(), g.opts, outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to file instead of stdout")

	return cmd
}
