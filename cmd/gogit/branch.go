package main

import (
	"fmt"

	"github.com/halide-vcs/gitkit"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/spf13/cobra"
)

func newBranchCmd(cfg *globalFlags) *cobra.Command {
	var del bool
	cmd := &cobra.Command{
		Use:   "branch [name] [target]",
		Short: "list, create, or delete branches",
		Args:  cobra.MaximumNArgs(2),
	}
	cmd.Flags().BoolVarP(&del, "delete", "d", false, "delete the named branch")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		repo, err := gitkit.Discover(cfg.path, gitkit.Options{})
		if err != nil {
			return err
		}

		if len(args) == 0 {
			branches, err := repo.Branches()
			if err != nil {
				return err
			}
			for _, b := range branches {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", b.Name, b.Oid.String())
			}
			return nil
		}

		if del {
			return repo.DeleteBranch(args[0])
		}

		var target githash.Oid
		if len(args) > 1 {
			target, err = repo.ResolveOid(args[1])
			if err != nil {
				return err
			}
		}
		return repo.CreateBranch(args[0], target)
	}
	return cmd
}
