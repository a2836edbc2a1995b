package main

import (
	"fmt"
	"os"
	"time"

	"github.com/halide-vcs/gitkit"
	"github.com/halide-vcs/gitkit/object"
	"github.com/spf13/cobra"
)

func newCommitCmd(cfg *globalFlags) *cobra.Command {
	var message, authorName, authorEmail string
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "record the staged index as a new commit",
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&authorName, "author-name", "", "commit author name")
	cmd.Flags().StringVar(&authorEmail, "author-email", "", "commit author email")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		repo, err := gitkit.Discover(cfg.path, gitkit.Options{})
		if err != nil {
			return err
		}
		if authorName == "" {
			authorName = os.Getenv("GOGIT_AUTHOR_NAME")
		}
		if authorEmail == "" {
			authorEmail = os.Getenv("GOGIT_AUTHOR_EMAIL")
		}
		sig := object.Signature{Name: authorName, Email: authorEmail, When: time.Now()}

		oid, err := repo.CreateCommit(message, sig, sig)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), oid.String())
		return nil
	}
	return cmd
}
