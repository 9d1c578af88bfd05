package commands

import "github.com/spf13/cobra"

// Completion returns the completion command for shell autocompletion.
func Completion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mysqlset.

To load completions:

Bash:
  $ source <(mysqlset completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ mysqlset completion bash > /etc/bash_completion.d/mysqlset
  # macOS:
  $ mysqlset completion bash > $(brew --prefix)/etc/bash_completion.d/mysqlset

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  # To load completions for each session, execute once:
  $ mysqlset completion zsh > "${fpath[1]}/_mysqlset"
  # You will need to start a new shell for this setup to take effect.

Fish:
  $ mysqlset completion fish | source
  # To load completions for each session, execute once:
  $ mysqlset completion fish > ~/.config/fish/completions/mysqlset.fish

PowerShell:
  PS> mysqlset completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> mysqlset completion powershell > mysqlset.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
	return cmd
}
