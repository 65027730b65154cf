package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/user"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/schemeportal/internal/app"
	"github.com/MrJamesThe3rd/schemeportal/internal/auth"
	"github.com/MrJamesThe3rd/schemeportal/internal/config"
)

// env is the state shared by every subcommand once the root has run.
type env struct {
	cfg      *config.Config
	db       *sql.DB
	services app.Services
	actor    *auth.Actor
}

var (
	actorID       string
	actorRole     string
	actorState    string
	actorDistrict string

	current env

	rootCmd = &cobra.Command{
		Use:           "schemectl",
		Short:         "Administer budget heads, proposals and location codes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			current.cfg = cfg
			current.actor = &auth.Actor{
				UserID:       actorID,
				Role:         auth.Role(actorRole),
				StateCode:    actorState,
				DistrictCode: actorDistrict,
			}

			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if current.db != nil {
				current.db.Close()
			}
		},
	}
)

// connect opens the database for commands that need it.
func connect(*cobra.Command, []string) error {
	db, err := app.Open(current.cfg)
	if err != nil {
		return err
	}

	current.db = db
	current.services = app.NewServices(db, current.cfg, app.Logger(current.cfg, os.Stderr))

	return nil
}

func defaultActor() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}

	return "schemectl"
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&actorID, "as", defaultActor(), "user id recorded as the author of writes")
	flags.StringVar(&actorRole, "role", string(auth.RoleAdmin), "role to act with")
	flags.StringVar(&actorState, "actor-state", "", "state code of the acting user")
	flags.StringVar(&actorDistrict, "actor-district", "", "district code of a district-role user")

	rootCmd.AddCommand(migrateCmd, budgetCmd, proposalCmd, sequenceCmd, locationCmd, tokenCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}
