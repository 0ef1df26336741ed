package cmd

import (
	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Generate a commit message for the staged changes and commit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		return a.commitFlow().Run(cmd.Context())
	},
}

func init() {
	addCommitFlags(commitCmd)
	rootCmd.AddCommand(commitCmd)
}
