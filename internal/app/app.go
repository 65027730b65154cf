// Package app wires configuration, storage and services for the binaries.
package app

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/cenkalti/backoff/v5"

	"github.com/MrJamesThe3rd/schemeportal/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/schemeportal/internal/budget/store"
	"github.com/MrJamesThe3rd/schemeportal/internal/config"
	"github.com/MrJamesThe3rd/schemeportal/internal/database"
	"github.com/MrJamesThe3rd/schemeportal/internal/location"
	locationStore "github.com/MrJamesThe3rd/schemeportal/internal/location/store"
	"github.com/MrJamesThe3rd/schemeportal/internal/proposal"
	proposalStore "github.com/MrJamesThe3rd/schemeportal/internal/proposal/store"
	"github.com/MrJamesThe3rd/schemeportal/internal/txn"
)

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func Logger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Log.Level}

	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// TxOptions applies the configured retry policy to every transaction.
func TxOptions(cfg *config.Config) []txn.Option {
	initial, maxInterval := cfg.Tx.InitialBackoff, cfg.Tx.MaxBackoff

	return []txn.Option{
		txn.WithTransientRetries(cfg.Tx.TransientRetries),
		txn.WithBackOff(func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxInterval = maxInterval

			return b
		}),
	}
}

// Open connects to the database and applies pending migrations.
func Open(cfg *config.Config) (*sql.DB, error) {
	db, err := database.New(cfg.ConnectionString(), database.Pool{
		MaxOpen:     cfg.DB.MaxOpenConns,
		MaxIdle:     cfg.DB.MaxIdleConns,
		MaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(db, cfg.DB.Name); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating: %w", err)
	}

	return db, nil
}

type Services struct {
	Budget    *budget.Service
	Proposals *proposal.Service
	Locations *location.Service
}

func NewServices(db *sql.DB, cfg *config.Config, logger *slog.Logger) Services {
	txOpts := TxOptions(cfg)

	return Services{
		Budget: budget.NewService(budgetStore.New(db),
			budget.WithLogger(logger),
			budget.WithTxOptions(txOpts...),
		),
		Proposals: proposal.NewService(proposalStore.New(db),
			proposal.WithLogger(logger),
			proposal.WithTxOptions(txOpts...),
		),
		Locations: location.NewService(locationStore.New(db),
			location.WithLogger(logger),
			location.WithTxOptions(txOpts...),
		),
	}
}
