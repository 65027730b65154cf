package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/database"
	"github.com/MrJamesThe3rd/schemeportal/internal/location"
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
	seqstore "github.com/MrJamesThe3rd/schemeportal/internal/sequence/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ location.Repository = (*Store)(nil)

type scanner interface {
	Scan(dest ...any) error
}

const selectPanchayatColumns = `id, district_code, block_code, name, code, is_temp, created_by, created_at`

const selectVillageColumns = `id, panchayat_id, name, code, is_temp, created_by, created_at`

func scanPanchayat(s scanner) (*location.Panchayat, error) {
	var p location.Panchayat

	err := s.Scan(&p.ID, &p.DistrictCode, &p.BlockCode, &p.Name, &p.Code, &p.IsTemp, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func scanVillage(s scanner) (*location.Village, error) {
	var v location.Village

	err := s.Scan(&v.ID, &v.PanchayatID, &v.Name, &v.Code, &v.IsTemp, &v.CreatedBy, &v.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func getPanchayat(ctx context.Context, q database.DBTX, column string, key any) (*location.Panchayat, error) {
	query := `SELECT ` + selectPanchayatColumns + ` FROM panchayat WHERE ` + column + ` = $1`

	p, err := scanPanchayat(q.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("panchayat", key)
		}

		return nil, fmt.Errorf("getting panchayat: %w", database.Classify(err))
	}

	return p, nil
}

func (s *Store) ListPanchayats(ctx context.Context, filter location.PanchayatFilter) ([]*location.Panchayat, error) {
	query := `SELECT ` + selectPanchayatColumns + ` FROM panchayat WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.DistrictCode != "" {
		query += fmt.Sprintf(" AND district_code = $%d", argIdx)

		args = append(args, filter.DistrictCode)
		argIdx++
	}

	if filter.BlockCode != "" {
		query += fmt.Sprintf(" AND block_code = $%d", argIdx)

		args = append(args, filter.BlockCode)
	}

	if filter.TempOnly {
		query += " AND is_temp"
	}

	query += " ORDER BY district_code, block_code, name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing panchayats: %w", database.Classify(err))
	}
	defer rows.Close()

	var out []*location.Panchayat

	for rows.Next() {
		p, err := scanPanchayat(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning panchayat: %w", err)
		}

		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating panchayats: %w", err)
	}

	return out, nil
}

func (s *Store) ListVillages(ctx context.Context, panchayatID uuid.UUID) ([]*location.Village, error) {
	query := `SELECT ` + selectVillageColumns + ` FROM panchayat_village WHERE panchayat_id = $1 ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, panchayatID)
	if err != nil {
		return nil, fmt.Errorf("listing villages: %w", database.Classify(err))
	}
	defer rows.Close()

	var out []*location.Village

	for rows.Next() {
		v, err := scanVillage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning village: %w", err)
		}

		out = append(out, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating villages: %w", err)
	}

	return out, nil
}

func (s *Store) Begin(ctx context.Context) (location.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning location tx: %w", err)
	}

	return &tx{tx: dbTx}, nil
}

type tx struct {
	tx *sql.Tx
}

func (t *tx) Commit() error   { return database.Classify(t.tx.Commit()) }
func (t *tx) Rollback() error { return t.tx.Rollback() }

func (t *tx) Sequences() sequence.Store { return seqstore.New(t.tx) }

func (t *tx) GetPanchayat(ctx context.Context, id uuid.UUID) (*location.Panchayat, error) {
	return getPanchayat(ctx, t.tx, "id", id)
}

func (t *tx) PanchayatByCode(ctx context.Context, code string) (*location.Panchayat, error) {
	return getPanchayat(ctx, t.tx, "code", code)
}

func (t *tx) InsertPanchayat(ctx context.Context, p *location.Panchayat) error {
	query := `
		INSERT INTO panchayat (district_code, block_code, name, code, is_temp, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := t.tx.QueryRowContext(ctx, query,
		p.DistrictCode, p.BlockCode, p.Name, p.Code, p.IsTemp, p.CreatedBy, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("creating panchayat: %w", database.Classify(err))
	}

	return nil
}

func (t *tx) InsertVillage(ctx context.Context, v *location.Village) error {
	query := `
		INSERT INTO panchayat_village (panchayat_id, name, code, is_temp, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := t.tx.QueryRowContext(ctx, query,
		v.PanchayatID, v.Name, v.Code, v.IsTemp, v.CreatedBy, v.CreatedAt,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("creating village: %w", database.Classify(err))
	}

	return nil
}
