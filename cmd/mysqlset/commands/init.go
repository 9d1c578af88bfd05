package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mysqlset/cmd/mysqlset/handlers"
	"github.com/imamik/mysqlset/internal/config"
)

// Init returns the command for creating a configuration file.
//
// Flags:
//
//	--output, -o: Path to output file (default "mysqlset.yaml")
//	--wizard, -w: Ask for the settings interactively
func Init() *cobra.Command {
	var (
		outputPath string
		wizard     bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file",
		Long: `Create a mysqlset configuration file.

Without flags the file holds the defaults: a StatefulSet named mysql with
3 replicas and 10Gi per replica in namespace mysql.

Use --wizard to choose the name, namespace, replica count and storage
interactively.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath, wizard)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultConfigFilename, "Output file path")
	cmd.Flags().BoolVarP(&wizard, "wizard", "w", false, "Ask for the settings interactively")

	return cmd
}
