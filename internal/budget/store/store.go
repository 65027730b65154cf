package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/budget"
	"github.com/MrJamesThe3rd/schemeportal/internal/database"
	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
	seqstore "github.com/MrJamesThe3rd/schemeportal/internal/sequence/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ budget.Repository = (*Store)(nil)

type scanner interface {
	Scan(dest ...any) error
}

const selectHeadColumns = `
	id, district_id, district_code, district_name, fiscal_year, sanction_no,
	allocated_amount, allocated_date, sanctioned_amount, sanctioned_date,
	released_amount, release_date, is_deleted, created_by, updated_by, created_at, updated_at
`

func scanHead(s scanner) (*budget.Head, error) {
	var (
		h  budget.Head
		fy string
	)

	if err := s.Scan(
		&h.ID, &h.DistrictID, &h.DistrictCode, &h.DistrictName, &fy, &h.SanctionNo,
		&h.AllocatedAmount, &h.AllocatedDate, &h.SanctionedAmount, &h.SanctionedDate,
		&h.ReleasedAmount, &h.ReleaseDate, &h.IsDeleted, &h.CreatedBy, &h.UpdatedBy, &h.CreatedAt, &h.UpdatedAt,
	); err != nil {
		return nil, err
	}

	year, err := fiscal.Parse(fy)
	if err != nil {
		return nil, fmt.Errorf("budget head %s: %w", h.ID, err)
	}

	h.FiscalYear = year

	return &h, nil
}

func queryHeads(ctx context.Context, q database.DBTX, query string, args ...any) ([]*budget.Head, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing budget heads: %w", database.Classify(err))
	}
	defer rows.Close()

	var heads []*budget.Head

	for rows.Next() {
		h, err := scanHead(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning budget head: %w", err)
		}

		heads = append(heads, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget heads: %w", database.Classify(err))
	}

	return heads, nil
}

func getHead(ctx context.Context, q database.DBTX, query string, id uuid.UUID) (*budget.Head, error) {
	h, err := scanHead(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("budget head", id)
		}

		return nil, fmt.Errorf("getting budget head: %w", database.Classify(err))
	}

	return h, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*budget.Head, error) {
	return getHead(ctx, s.db, `SELECT `+selectHeadColumns+` FROM budget_head WHERE id = $1 AND NOT is_deleted`, id)
}

func (s *Store) List(ctx context.Context, filter budget.ListFilter) ([]*budget.Head, error) {
	query := `SELECT ` + selectHeadColumns + ` FROM budget_head WHERE TRUE`

	var args []any

	argIdx := 1

	if !filter.IncludeDeleted {
		query += " AND NOT is_deleted"
	}

	if filter.DistrictID != "" {
		query += fmt.Sprintf(" AND district_id = $%d", argIdx)

		args = append(args, filter.DistrictID)
		argIdx++
	}

	if filter.FiscalYear != nil {
		query += fmt.Sprintf(" AND fiscal_year = $%d", argIdx)

		args = append(args, filter.FiscalYear.Short())
	}

	query += " ORDER BY fiscal_year DESC, district_code ASC, created_at ASC"

	return queryHeads(ctx, s.db, query, args...)
}

func (s *Store) Begin(ctx context.Context) (budget.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning budget tx: %w", err)
	}

	return &tx{tx: dbTx}, nil
}

type tx struct {
	tx *sql.Tx
}

func (t *tx) Commit() error   { return database.Classify(t.tx.Commit()) }
func (t *tx) Rollback() error { return t.tx.Rollback() }

func (t *tx) Sequences() sequence.Store { return seqstore.New(t.tx) }

func (t *tx) LockScope(ctx context.Context, scope budget.Scope) error {
	return database.LockScope(ctx, t.tx, "budget_head", scope.DistrictID, scope.FiscalYear.Short())
}

func (t *tx) ListScope(ctx context.Context, scope budget.Scope) ([]*budget.Head, error) {
	return queryHeads(ctx, t.tx, `SELECT `+selectHeadColumns+`
		FROM budget_head
		WHERE district_id = $1 AND fiscal_year = $2 AND NOT is_deleted
		ORDER BY created_at ASC`,
		scope.DistrictID, scope.FiscalYear.Short())
}

func (t *tx) GetForUpdate(ctx context.Context, id uuid.UUID) (*budget.Head, error) {
	return getHead(ctx, t.tx, `SELECT `+selectHeadColumns+` FROM budget_head WHERE id = $1 FOR UPDATE`, id)
}

func (t *tx) Insert(ctx context.Context, h *budget.Head) error {
	query := `
		INSERT INTO budget_head (
			district_id, district_code, district_name, fiscal_year, sanction_no,
			allocated_amount, allocated_date, sanctioned_amount, sanctioned_date,
			released_amount, release_date, created_by, updated_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		h.DistrictID,
		h.DistrictCode,
		h.DistrictName,
		h.FiscalYear.Short(),
		h.SanctionNo,
		h.AllocatedAmount,
		h.AllocatedDate,
		h.SanctionedAmount,
		h.SanctionedDate,
		h.ReleasedAmount,
		h.ReleaseDate,
		h.CreatedBy,
		h.UpdatedBy,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating budget head: %w", database.Classify(err))
	}

	return nil
}

func (t *tx) Update(ctx context.Context, h *budget.Head) error {
	query := `
		UPDATE budget_head
		SET district_name = $1, sanctioned_amount = $2, sanctioned_date = $3,
			released_amount = $4, release_date = $5, is_deleted = $6, updated_by = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		h.DistrictName,
		h.SanctionedAmount,
		h.SanctionedDate,
		h.ReleasedAmount,
		h.ReleaseDate,
		h.IsDeleted,
		h.UpdatedBy,
		h.ID,
	).Scan(&h.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("budget head", h.ID)
		}

		return fmt.Errorf("updating budget head: %w", database.Classify(err))
	}

	return nil
}
