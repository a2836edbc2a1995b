// Command gogit is a thin cobra CLI exercising the gitkit facade: a
// demonstration binary, not part of the library's public contract
// (spec §6's "No CLI... are part of the core").
//
// Grounded on the teacher's cmd/git-go: same cobra root-command shape
// and persistent -C flag, wired to package gitkit instead of the
// teacher's own git package.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	path string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gogit",
		Short:         "a small demonstration CLI over package gitkit",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cfg := &globalFlags{}
	cmd.PersistentFlags().StringVarP(&cfg.path, "C", "C", ".", "run as if gogit was started in the provided path")

	cmd.AddCommand(newInitCmd(cfg))
	cmd.AddCommand(newLogCmd(cfg))
	cmd.AddCommand(newStatusCmd(cfg))
	cmd.AddCommand(newAddCmd(cfg))
	cmd.AddCommand(newCommitCmd(cfg))
	cmd.AddCommand(newBranchCmd(cfg))
	cmd.AddCommand(newCheckoutCmd(cfg))
	cmd.AddCommand(newCatFileCmd(cfg))

	return cmd
}
