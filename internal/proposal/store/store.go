package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/database"
	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
	"github.com/MrJamesThe3rd/schemeportal/internal/proposal"
	"github.com/MrJamesThe3rd/schemeportal/internal/reference"
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
	seqstore "github.com/MrJamesThe3rd/schemeportal/internal/sequence/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ proposal.Repository = (*Store)(nil)

type scanner interface {
	Scan(dest ...any) error
}

const locationColumns = `area_type, state_code, district_id, district_code, constituency_code,
	block_code, panchayat_code, village_code, local_body_type, local_body_code, ward_code`

func locationDest(l *proposal.Location) []any {
	return []any{
		&l.Area, &l.StateCode, &l.DistrictID, &l.DistrictCode, &l.ConstituencyCode,
		&l.BlockCode, &l.PanchayatCode, &l.VillageCode, &l.LocalBodyType, &l.LocalBodyCode, &l.WardCode,
	}
}

func locationArgs(l proposal.Location) []any {
	return []any{
		string(l.Area), l.StateCode, l.DistrictID, l.DistrictCode, l.ConstituencyCode,
		l.BlockCode, l.PanchayatCode, l.VillageCode, l.LocalBodyType, l.LocalBodyCode, l.WardCode,
	}
}

const selectProposalColumns = `id, sector, department, recommender_id, recommender_type, ` + locationColumns + `,
	proposal_amount, permissible_works, dlc_approved, nodal_minister_approved, reference_no,
	manual_reference_no, fiscal_year, action_type, agency_id, created_by, updated_by, created_at, updated_at`

func scanProposal(s scanner) (*proposal.Proposal, error) {
	var (
		p      proposal.Proposal
		area   string
		works  []byte
		fy     string
		action string
	)

	dest := []any{&p.ID, &p.Sector, &p.Department, &p.RecommenderID, &p.RecommenderType}
	loc := locationDest(&p.Location)
	loc[0] = &area
	dest = append(dest, loc...)
	dest = append(dest,
		&p.Amount, &works, &p.DLCApproved, &p.NodalMinisterApproved, &p.ReferenceNo,
		&p.ManualReferenceNo, &fy, &action, &p.AgencyID, &p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt,
	)

	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	p.Location.Area = reference.Area(area)
	p.ActionType = proposal.ActionType(action)

	if err := json.Unmarshal(works, &p.PermissibleWorks); err != nil {
		return nil, fmt.Errorf("decoding permissible works of %s: %w", p.ID, err)
	}

	year, err := fiscal.Parse(fy)
	if err != nil {
		return nil, fmt.Errorf("proposal %s: %w", p.ID, err)
	}

	p.FiscalYear = year

	return &p, nil
}

const selectProjectColumns = `id, proposal_id, reference_no, sector, department, ` + locationColumns + `,
	project_amount, permissible_works, dlc_approved, nodal_minister_approved, fiscal_year, status,
	created_by, updated_by, created_at, updated_at`

func scanProject(s scanner) (*proposal.Project, error) {
	var (
		p      proposal.Project
		area   string
		works  []byte
		fy     string
		status string
	)

	dest := []any{&p.ID, &p.ProposalID, &p.ReferenceNo, &p.Sector, &p.Department}
	loc := locationDest(&p.Location)
	loc[0] = &area
	dest = append(dest, loc...)
	dest = append(dest,
		&p.Amount, &works, &p.DLCApproved, &p.NodalMinisterApproved, &fy, &status,
		&p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt,
	)

	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	p.Location.Area = reference.Area(area)
	p.Status = proposal.ProjectStatus(status)

	if err := json.Unmarshal(works, &p.PermissibleWorks); err != nil {
		return nil, fmt.Errorf("decoding permissible works of project %s: %w", p.ID, err)
	}

	year, err := fiscal.Parse(fy)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", p.ID, err)
	}

	p.FiscalYear = year

	return &p, nil
}

const selectProgressColumns = `id, project_id, proposal_id, status, progress_percent, estimated_amount,
	sanctioned_amount, transferred_amount, remaining_amount, agency_id, created_at, updated_at`

func scanProgress(s scanner) (*proposal.Progress, error) {
	var (
		p      proposal.Progress
		status string
	)

	if err := s.Scan(
		&p.ID, &p.ProjectID, &p.ProposalID, &status, &p.Percent, &p.EstimatedAmount,
		&p.SanctionedAmount, &p.TransferredAmount, &p.RemainingAmount, &p.AgencyID, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Status = proposal.ProgressStatus(status)

	return &p, nil
}

func notFound[T any](v T, err error, entity string, id uuid.UUID) (T, error) {
	if err == nil {
		return v, nil
	}

	var zero T

	if errors.Is(err, sql.ErrNoRows) {
		return zero, apperr.NotFound(entity, id)
	}

	return zero, fmt.Errorf("getting %s: %w", entity, database.Classify(err))
}

func getProposal(ctx context.Context, q database.DBTX, id uuid.UUID, lock bool) (*proposal.Proposal, error) {
	query := `SELECT ` + selectProposalColumns + ` FROM master_proposal WHERE id = $1`
	if lock {
		query += " FOR UPDATE"
	}

	p, err := scanProposal(q.QueryRowContext(ctx, query, id))

	return notFound(p, err, "proposal", id)
}

func getProject(ctx context.Context, q database.DBTX, proposalID uuid.UUID) (*proposal.Project, error) {
	p, err := scanProject(q.QueryRowContext(ctx,
		`SELECT `+selectProjectColumns+` FROM master_project WHERE proposal_id = $1`, proposalID))

	return notFound(p, err, "project for proposal", proposalID)
}

func getProgress(ctx context.Context, q database.DBTX, projectID uuid.UUID) (*proposal.Progress, error) {
	p, err := scanProgress(q.QueryRowContext(ctx,
		`SELECT `+selectProgressColumns+` FROM project_progress WHERE project_id = $1`, projectID))

	return notFound(p, err, "progress for project", projectID)
}

func (s *Store) GetProposal(ctx context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	return getProposal(ctx, s.db, id, false)
}

func (s *Store) GetProject(ctx context.Context, proposalID uuid.UUID) (*proposal.Project, error) {
	return getProject(ctx, s.db, proposalID)
}

func (s *Store) GetProgress(ctx context.Context, projectID uuid.UUID) (*proposal.Progress, error) {
	return getProgress(ctx, s.db, projectID)
}

func (s *Store) ListProposals(ctx context.Context, filter proposal.ListFilter) ([]*proposal.Proposal, error) {
	query := `SELECT ` + selectProposalColumns + ` FROM master_proposal WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.StateCode != "" {
		query += fmt.Sprintf(" AND state_code = $%d", argIdx)

		args = append(args, filter.StateCode)
		argIdx++
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

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", database.Classify(err))
	}
	defer rows.Close()

	var out []*proposal.Proposal

	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning proposal: %w", err)
		}

		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating proposals: %w", err)
	}

	return out, nil
}

func (s *Store) Begin(ctx context.Context) (proposal.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning proposal tx: %w", err)
	}

	return &tx{tx: dbTx}, nil
}

type tx struct {
	tx *sql.Tx
}

func (t *tx) Commit() error   { return database.Classify(t.tx.Commit()) }
func (t *tx) Rollback() error { return t.tx.Rollback() }

func (t *tx) Sequences() sequence.Store { return seqstore.New(t.tx) }

func (t *tx) GetProposalForUpdate(ctx context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	return getProposal(ctx, t.tx, id, true)
}

func (t *tx) GetProject(ctx context.Context, proposalID uuid.UUID) (*proposal.Project, error) {
	return getProject(ctx, t.tx, proposalID)
}

func (t *tx) GetProgress(ctx context.Context, projectID uuid.UUID) (*proposal.Progress, error) {
	return getProgress(ctx, t.tx, projectID)
}

func (t *tx) InsertProposal(ctx context.Context, p *proposal.Proposal) error {
	works, err := json.Marshal(p.PermissibleWorks)
	if err != nil {
		return fmt.Errorf("encoding permissible works: %w", err)
	}

	query := `
		INSERT INTO master_proposal (
			sector, department, recommender_id, recommender_type, ` + locationColumns + `,
			proposal_amount, permissible_works, dlc_approved, nodal_minister_approved, reference_no,
			manual_reference_no, fiscal_year, action_type, agency_id, created_by, updated_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	args := []any{p.Sector, p.Department, p.RecommenderID, p.RecommenderType}
	args = append(args, locationArgs(p.Location)...)
	args = append(args,
		p.Amount, string(works), p.DLCApproved, p.NodalMinisterApproved, p.ReferenceNo,
		p.ManualReferenceNo, p.FiscalYear.Short(), string(p.ActionType), p.AgencyID, p.CreatedBy, p.UpdatedBy,
	)

	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("creating proposal: %w", database.Classify(err))
	}

	return nil
}

func (t *tx) InsertProject(ctx context.Context, p *proposal.Project) error {
	works, err := json.Marshal(p.PermissibleWorks)
	if err != nil {
		return fmt.Errorf("encoding permissible works: %w", err)
	}

	query := `
		INSERT INTO master_project (
			proposal_id, reference_no, sector, department, ` + locationColumns + `,
			project_amount, permissible_works, dlc_approved, nodal_minister_approved, fiscal_year, status,
			created_by, updated_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	args := []any{p.ProposalID, p.ReferenceNo, p.Sector, p.Department}
	args = append(args, locationArgs(p.Location)...)
	args = append(args,
		p.Amount, string(works), p.DLCApproved, p.NodalMinisterApproved, p.FiscalYear.Short(), string(p.Status),
		p.CreatedBy, p.UpdatedBy,
	)

	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("creating project: %w", database.Classify(err))
	}

	return nil
}

func (t *tx) InsertProgress(ctx context.Context, p *proposal.Progress) error {
	query := `
		INSERT INTO project_progress (
			project_id, proposal_id, status, progress_percent, estimated_amount, sanctioned_amount,
			transferred_amount, remaining_amount, agency_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		p.ProjectID,
		p.ProposalID,
		string(p.Status),
		p.Percent,
		p.EstimatedAmount,
		p.SanctionedAmount,
		p.TransferredAmount,
		p.RemainingAmount,
		p.AgencyID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating progress: %w", database.Classify(err))
	}

	return nil
}

func (t *tx) UpdateProposal(ctx context.Context, p *proposal.Proposal) error {
	works, err := json.Marshal(p.PermissibleWorks)
	if err != nil {
		return fmt.Errorf("encoding permissible works: %w", err)
	}

	query := `
		UPDATE master_proposal
		SET sector = $1, department = $2, recommender_id = $3, recommender_type = $4,
			proposal_amount = $5, permissible_works = $6, dlc_approved = $7, nodal_minister_approved = $8,
			manual_reference_no = $9, action_type = $10, agency_id = $11, updated_by = $12, updated_at = NOW()
		WHERE id = $13
		RETURNING updated_at
	`

	err = t.tx.QueryRowContext(ctx, query,
		p.Sector, p.Department, p.RecommenderID, p.RecommenderType,
		p.Amount, string(works), p.DLCApproved, p.NodalMinisterApproved,
		p.ManualReferenceNo, string(p.ActionType), p.AgencyID, p.UpdatedBy,
		p.ID,
	).Scan(&p.UpdatedAt)

	_, err = notFound(p, err, "proposal", p.ID)

	return err
}

func (t *tx) UpdateProject(ctx context.Context, p *proposal.Project) error {
	works, err := json.Marshal(p.PermissibleWorks)
	if err != nil {
		return fmt.Errorf("encoding permissible works: %w", err)
	}

	query := `
		UPDATE master_project
		SET sector = $1, department = $2, project_amount = $3, permissible_works = $4,
			dlc_approved = $5, nodal_minister_approved = $6, updated_by = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	err = t.tx.QueryRowContext(ctx, query,
		p.Sector, p.Department, p.Amount, string(works),
		p.DLCApproved, p.NodalMinisterApproved, p.UpdatedBy,
		p.ID,
	).Scan(&p.UpdatedAt)

	_, err = notFound(p, err, "project", p.ID)

	return err
}

func (t *tx) UpdateProgress(ctx context.Context, p *proposal.Progress) error {
	query := `
		UPDATE project_progress
		SET estimated_amount = $1, sanctioned_amount = $2, remaining_amount = $3, agency_id = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		p.EstimatedAmount, p.SanctionedAmount, p.RemainingAmount, p.AgencyID, p.ID,
	).Scan(&p.UpdatedAt)

	_, err = notFound(p, err, "progress", p.ID)

	return err
}
