package main

import (
	"github.com/halide-vcs/gitkit"
	"github.com/spf13/cobra"
)

func newCheckoutCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout <branch-or-oid>",
		Short: "switch HEAD, the index, and the worktree to a branch or commit",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		repo, err := gitkit.Discover(cfg.path, gitkit.Options{})
		if err != nil {
			return err
		}
		return repo.Checkout(args[0])
	}
	return cmd
}
