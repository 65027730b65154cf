package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/schemeportal/internal/auth"
)

var (
	tokenTTL time.Duration

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Issue API bearer tokens",
	}

	tokenIssueCmd = &cobra.Command{
		Use:   "issue",
		Short: "Sign a token for the acting user",
		Long: "Sign a token for the user given by --as, --role, --actor-state and\n" +
			"--actor-district. The token is printed to stdout.",
		RunE: runTokenIssue,
	}
)

func init() {
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")
	tokenCmd.AddCommand(tokenIssueCmd)
}

func runTokenIssue(cmd *cobra.Command, _ []string) error {
	if err := current.cfg.RequireAuth(); err != nil {
		return err
	}

	if err := current.actor.Validate(); err != nil {
		return err
	}

	v := auth.NewVerifier(current.cfg.Auth.JWTSecret, current.cfg.Auth.Issuer)

	raw, err := v.Issue(*current.actor, tokenTTL)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), raw)

	return nil
}
