package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connect(cmd, args); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("schema is up to date"))

		return nil
	},
}
