package main

import (
	"fmt"

	"github.com/halide-vcs/gitkit"
	"github.com/spf13/cobra"
)

func newInitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "create an empty repository",
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		dir := cfg.path
		if len(args) > 0 {
			dir = args[0]
		}
		repo, err := gitkit.Init(dir, gitkit.Options{})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "initialized empty repository in %s\n", repo.GitDirPath())
		return nil
	}
	return cmd
}
