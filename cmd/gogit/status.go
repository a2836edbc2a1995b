package main

import (
	"fmt"

	"github.com/halide-vcs/gitkit"
	"github.com/spf13/cobra"
)

func newStatusCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "show the working tree status",
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		repo, err := gitkit.Discover(cfg.path, gitkit.Options{})
		if err != nil {
			return err
		}
		entries, err := repo.Status()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", e.State.String(), e.Path)
		}
		return nil
	}
	return cmd
}
