package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mysqlset/cmd/mysqlset/handlers"
)

// Test returns the command that checks replication end to end.
func Test(g *globalFlags) *cobra.Command {
	vo := handlers.VerifyOptions{Replica: -1}

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Write through the primary and read through the replicas",
		Long: `Check replication with one-shot mysql client pods.

test inserts a message into test.messages through <name>-0.<name>, reads it
back through <name>-read and, with --replica, from one pod directly. With
--samples it queries @@server_id repeatedly through <name>-read to show
which pods serve reads.

Examples:
  mysqlset test
  mysqlset test --message hi --replica 2 --samples 20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Verify(cmd.Context(), g.opts, vo)
		},
	}

	cmd.Flags().StringVarP(&vo.Message, "message", "m", "hello", "Message to insert")
	cmd.Flags().IntVar(&vo.Replica, "replica", -1, "Also read from this ordinal directly")
	cmd.Flags().IntVar(&vo.Samples, "samples", 10, "Number of server id queries through the read service (0 to skip)")
	cmd.Flags().BoolVar(&vo.JSON, "json", false, "Output the report as JSON")

	return cmd
}
