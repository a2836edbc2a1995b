package main

import (
	"github.com/halide-vcs/gitkit"
	"github.com/spf13/cobra"
)

func newAddCmd(cfg *globalFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "add [paths...]",
		Short: "stage files in the index",
	}
	cmd.Flags().BoolVarP(&all, "all", "A", false, "stage every changed or new file and drop removed ones")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		repo, err := gitkit.Discover(cfg.path, gitkit.Options{})
		if err != nil {
			return err
		}
		if all {
			return repo.AddAll()
		}
		for _, p := range args {
			if err := repo.Add(p); err != nil {
				return err
			}
		}
		return nil
	}
	return cmd
}
