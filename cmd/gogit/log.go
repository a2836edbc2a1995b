package main

import (
	"fmt"

	"github.com/halide-vcs/gitkit"
	"github.com/spf13/cobra"
)

func newLogCmd(cfg *globalFlags) *cobra.Command {
	var maxCount int
	cmd := &cobra.Command{
		Use:   "log [start]",
		Short: "walk commit history newest-first",
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.Flags().IntVarP(&maxCount, "max-count", "n", 0, "limit the number of commits shown")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		repo, err := gitkit.Discover(cfg.path, gitkit.Options{})
		if err != nil {
			return err
		}
		start := "HEAD"
		if len(args) > 0 {
			start = args[0]
		}
		commits, err := repo.Log(start, gitkit.LogOptions{MaxCount: maxCount})
		if err != nil {
			return err
		}
		for _, c := range commits {
			fmt.Fprintf(cmd.OutOrStdout(), "commit %s\nAuthor: %s\n\n    %s\n\n", c.ID().String(), c.Author().String(), c.Summary())
		}
		return nil
	}
	return cmd
}
