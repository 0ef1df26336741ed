package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	mergeTarget string
	mergeCmd    = &cobra.Command{
		Use:   "merge",
		Short: "Merge the current branch into a target branch and push it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			return a.mergeFlow(mergeTarget).Run(cmd.Context())
		},
	}

	branchesCmd = &cobra.Command{
		Use:   "branches",
		Short: "List local and remote branches available as merge targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			branches, err := a.git.ListBranches(cmd.Context())
			if err != nil {
				return err
			}
			for _, branch := range branches {
				fmt.Fprintln(outWriter(), branch)
			}
			return nil
		},
	}
)

func init() {
	mergeCmd.Flags().StringVarP(&mergeTarget, "into", "t", "", "Target branch (skips the interactive choice)")
	_ = mergeCmd.RegisterFlagCompletionFunc("into", completeBranches)

	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(branchesCmd)
}

func completeBranches(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	branches, err := a.git.ListBranches(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return branches, cobra.ShellCompDirectiveNoFileComp
}
