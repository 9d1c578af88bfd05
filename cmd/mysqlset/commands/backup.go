package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mysqlset/cmd/mysqlset/handlers"
)

// Backup returns the command that dumps the databases to object storage.
//
// Environment variables:
//
//	MYSQLSET_S3_ACCESS_KEY: access key (required)
//	MYSQLSET_S3_SECRET_KEY: secret key (required)
func Backup(g *globalFlags) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Dump all databases to S3-compatible storage",
		Long: `Dump all databases with mysqldump and upload the dump.

The dump is taken from mysql-1 when replicas exist, otherwise from the
primary. Objects are stored as <prefix>/<namespace>/<name>/<timestamp>.sql
in the bucket configured under backup.

Examples:
  mysqlset backup
  mysqlset backup --list`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Backup(cmd.Context(), g.opts, list)
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List existing dumps instead of taking one")

	return cmd
}
