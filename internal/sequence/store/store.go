package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/schemeportal/internal/database"
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
)

// Store reads the code columns of each namespace and maintains the
// sequence_counters table. Bind it to a transaction so reads and the
// eventual insert share a snapshot.
type Store struct {
	q database.DBTX
}

func New(q database.DBTX) *Store {
	return &Store{q: q}
}

var _ sequence.Store = (*Store)(nil)

// lastCodeQueries select the highest code of each kind. Longer codes sort
// first so numbers that outgrow their padding still count as the maximum.
// Proposal references differ in prefix between rural and urban locations,
// so they are ranked by their trailing running number alone.
var lastCodeQueries = map[sequence.Kind]struct {
	query string
	parts int
}{
	sequence.KindPanchayatTemp: {
		query: `SELECT code FROM panchayat
			WHERE code ~ '^TEMP-[0-9]+$'
			ORDER BY LENGTH(code) DESC, code DESC
			LIMIT 1`,
	},
	sequence.KindVillageTemp: {
		query: `SELECT code FROM panchayat_village
			WHERE code ~ '^TEMP-[0-9]+$'
			ORDER BY LENGTH(code) DESC, code DESC
			LIMIT 1`,
	},
	sequence.KindBudgetSanction: {
		query: `SELECT sanction_no FROM budget_head
			WHERE district_id = $1 AND fiscal_year = $2
			ORDER BY LENGTH(sanction_no) DESC, sanction_no DESC
			LIMIT 1`,
		parts: 2,
	},
	sequence.KindProposalReference: {
		query: `SELECT reference_no FROM master_proposal
			WHERE state_code = $1 AND fiscal_year = $2 AND reference_no ~ '/[0-9]+$'
			ORDER BY substring(reference_no FROM '([0-9]+)$')::NUMERIC DESC
			LIMIT 1`,
		parts: 2,
	},
}

func (s *Store) LastCode(ctx context.Context, scope sequence.Scope) (string, error) {
	q, ok := lastCodeQueries[scope.Kind]
	if !ok {
		return "", fmt.Errorf("unknown sequence kind %q", scope.Kind)
	}

	parts := scope.Parts()
	if len(parts) != q.parts {
		return "", fmt.Errorf("scope %s: expected %d key parts, got %d", scope, q.parts, len(parts))
	}

	args := make([]any, len(parts))
	for i, p := range parts {
		args[i] = p
	}

	var code string

	err := s.q.QueryRowContext(ctx, q.query, args...).Scan(&code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("reading last code: %w", database.Classify(err))
	}

	return code, nil
}

func (s *Store) Bump(ctx context.Context, scope sequence.Scope, floor int64) (int64, error) {
	query := `
		INSERT INTO sequence_counters (kind, scope_key, value, updated_at)
		VALUES ($1, $2, $3::BIGINT + 1, NOW())
		ON CONFLICT (kind, scope_key)
		DO UPDATE SET value = GREATEST(sequence_counters.value, $3::BIGINT) + 1, updated_at = NOW()
		RETURNING value
	`

	var value int64
	if err := s.q.QueryRowContext(ctx, query, string(scope.Kind), scope.Key, floor).Scan(&value); err != nil {
		return 0, fmt.Errorf("bumping sequence counter: %w", database.Classify(err))
	}

	return value, nil
}
