package main

import (
	"fmt"

	"github.com/halide-vcs/gitkit"
	"github.com/spf13/cobra"
)

func newCatFileCmd(cfg *globalFlags) *cobra.Command {
	var showType, prettyPrint bool
	cmd := &cobra.Command{
		Use:   "cat-file <oid-or-prefix>",
		Short: "print the contents of a repository object",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object's type instead of its content")
	cmd.Flags().BoolVarP(&prettyPrint, "pretty-print", "p", true, "print the object's content as stored (trees are not formatted)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		repo, err := gitkit.Discover(cfg.path, gitkit.Options{})
		if err != nil {
			return err
		}
		o, err := repo.Object(args[0])
		if err != nil {
			return err
		}
		if showType {
			fmt.Fprintln(cmd.OutOrStdout(), o.Kind().String())
			return nil
		}
		_, err = cmd.OutOrStdout().Write(o.Bytes())
		return err
	}
	return cmd
}
