package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompletionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completions <bash|zsh|fish|powershell>",
		Short:     "Emit a shell completion script to stdout",
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out.Out)
			case "zsh":
				return root.GenZshCompletion(out.Out)
			case "fish":
				return root.GenFishCompletion(out.Out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out.Out)
			default:
				return fmt.Errorf("unsupported shell %q", args[0])
			}
		},
	}
}
