package proposal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/auth"
	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
	"github.com/MrJamesThe3rd/schemeportal/internal/reference"
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
	"github.com/MrJamesThe3rd/schemeportal/internal/txn"
	"github.com/MrJamesThe3rd/schemeportal/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=proposal
type Repository interface {
	Begin(ctx context.Context) (Tx, error)
	GetProposal(ctx context.Context, id uuid.UUID) (*Proposal, error)
	GetProject(ctx context.Context, proposalID uuid.UUID) (*Project, error)
	GetProgress(ctx context.Context, projectID uuid.UUID) (*Progress, error)
	ListProposals(ctx context.Context, filter ListFilter) ([]*Proposal, error)
}

// Tx writes a proposal and its mirrored documents as one unit.
type Tx interface {
	Sequences() sequence.Store
	GetProposalForUpdate(ctx context.Context, id uuid.UUID) (*Proposal, error)
	GetProject(ctx context.Context, proposalID uuid.UUID) (*Project, error)
	GetProgress(ctx context.Context, projectID uuid.UUID) (*Progress, error)
	InsertProposal(ctx context.Context, p *Proposal) error
	InsertProject(ctx context.Context, p *Project) error
	InsertProgress(ctx context.Context, p *Progress) error
	UpdateProposal(ctx context.Context, p *Proposal) error
	UpdateProject(ctx context.Context, p *Project) error
	UpdateProgress(ctx context.Context, p *Progress) error
	Commit() error
	Rollback() error
}

type ListFilter struct {
	StateCode  string
	DistrictID string
	FiscalYear *fiscal.Year
}

type CreateParams struct {
	Sector                string          `json:"sector" validate:"required"`
	Department            string          `json:"department" validate:"required"`
	RecommenderID         string          `json:"recommender_id" validate:"required"`
	RecommenderType       string          `json:"recommender_type" validate:"required"`
	Location              Location        `json:"location"`
	Amount                decimal.Decimal `json:"proposal_amount" validate:"positive_decimal"`
	PermissibleWorks      []string        `json:"permissible_works" validate:"required,min=1,dive,required"`
	DLCApproved           bool            `json:"dlc_approved"`
	NodalMinisterApproved bool            `json:"nodal_minister_approved"`
	ManualReferenceNo     string          `json:"manual_reference_no" validate:"max=64"`
	AgencyID              string          `json:"agency_id"`
}

// UpdateParams is a partial update; nil fields are left unchanged. The
// location and reference number cannot be patched.
type UpdateParams struct {
	Sector                *string          `json:"sector" validate:"omitempty,min=1"`
	Department            *string          `json:"department" validate:"omitempty,min=1"`
	RecommenderID         *string          `json:"recommender_id" validate:"omitempty,min=1"`
	RecommenderType       *string          `json:"recommender_type" validate:"omitempty,min=1"`
	Amount                *decimal.Decimal `json:"proposal_amount" validate:"omitempty,positive_decimal"`
	PermissibleWorks      []string         `json:"permissible_works" validate:"omitempty,dive,required"`
	DLCApproved           *bool            `json:"dlc_approved"`
	NodalMinisterApproved *bool            `json:"nodal_minister_approved"`
	ManualReferenceNo     *string          `json:"manual_reference_no" validate:"omitempty,max=64"`
	AgencyID              *string          `json:"agency_id"`
}

// Stage is a step of the create pipeline. Each stage reached is recorded as
// a span event; a failure after any stage aborts the whole transaction.
type Stage string

const (
	StageValidated         Stage = "validated"
	StageReferenceAssigned Stage = "reference_assigned"
	StageProposalPersisted Stage = "proposal_persisted"
	StageProjectPersisted  Stage = "project_persisted"
	StageProgressPersisted Stage = "progress_persisted"
	StageCommitted         Stage = "committed"
	StageAborted           Stage = "aborted"
)

// writeRoles may create and edit proposals. Viewers only read.
var writeRoles = []auth.Role{auth.RolePlanning, auth.RoleAdmin, auth.RoleDistrict}

type Service struct {
	repo      Repository
	allocator sequence.Allocator
	now       func() time.Time
	logger    *slog.Logger
	tracer    trace.Tracer
	txOpts    []txn.Option
}

type Option func(*Service)

func WithAllocator(a sequence.Allocator) Option {
	return func(s *Service) { s.allocator = a }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

func WithTxOptions(opts ...txn.Option) Option {
	return func(s *Service) { s.txOpts = append(s.txOpts, opts...) }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		allocator: sequence.CounterAllocator{},
		now:       time.Now,
		logger:    slog.Default(),
		tracer:    otel.Tracer("schemeportal/proposal"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// pipeline records the stages one create attempt passes through.
type pipeline struct {
	span trace.Span
	last Stage
}

func (p *pipeline) reach(stage Stage, attrs ...attribute.KeyValue) {
	p.last = stage
	p.span.AddEvent(string(stage), trace.WithAttributes(attrs...))
}

// Create validates params, assigns the next reference number in the
// proposal's state and fiscal year, and persists the proposal, its project
// and its progress in one transaction.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, params CreateParams) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "proposal.Create", trace.WithAttributes(
		attribute.String("state_code", params.Location.StateCode),
		attribute.String("district_id", params.Location.DistrictID),
	))
	defer span.End()

	pl := &pipeline{span: span}

	res, err := s.create(ctx, pl, actor, params)
	if err != nil {
		kind := apperr.Kind(err)

		span.AddEvent(string(StageAborted), trace.WithAttributes(attribute.String("after", string(pl.last))))
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		pipelineTotal.WithLabelValues("create", string(StageAborted), kind).Inc()
		s.logger.Warn("proposal create aborted", "after", pl.last, "kind", kind, "error", err)

		return nil, err
	}

	pl.reach(StageCommitted, attribute.String("reference_no", res.Proposal.ReferenceNo))
	pipelineTotal.WithLabelValues("create", string(StageCommitted), apperr.Kind(nil)).Inc()
	s.logger.Info("proposal created",
		"id", res.Proposal.ID, "reference_no", res.Proposal.ReferenceNo,
		"project_id", res.Project.ID, "by", actor.UserID)

	return res, nil
}

func (s *Service) create(ctx context.Context, pl *pipeline, actor *auth.Actor, params CreateParams) (*Result, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	area, err := params.Location.Parts().Branch()
	if err != nil {
		return nil, err
	}

	if err := actor.RequireDistrict(params.Location.DistrictCode, writeRoles...); err != nil {
		return nil, err
	}

	pl.reach(StageValidated)

	now := s.now()
	fy := fiscal.Of(now)

	loc := params.Location
	loc.Area = area

	var res *Result

	err = txn.Run(ctx, s.repo.Begin, func(ctx context.Context, tx Tx) error {
		scope := sequence.NewScope(sequence.KindProposalReference, loc.StateCode, fy.Short())

		running, err := s.allocator.Next(ctx, tx.Sequences(), scope, reference.RunningNumber)
		if err != nil {
			return apperr.Persistence("allocating running number", err)
		}

		ref, err := reference.Compose(loc.Parts(), fy, running)
		if err != nil {
			return err
		}

		pl.reach(StageReferenceAssigned, attribute.String("reference_no", ref))

		p := &Proposal{
			Sector:                params.Sector,
			Department:            params.Department,
			RecommenderID:         params.RecommenderID,
			RecommenderType:       params.RecommenderType,
			Location:              loc,
			Amount:                params.Amount,
			PermissibleWorks:      params.PermissibleWorks,
			DLCApproved:           params.DLCApproved,
			NodalMinisterApproved: params.NodalMinisterApproved,
			ReferenceNo:           ref,
			ManualReferenceNo:     params.ManualReferenceNo,
			FiscalYear:            fy,
			ActionType:            ActionCreated,
			AgencyID:              params.AgencyID,
			CreatedBy:             actor.UserID,
			UpdatedBy:             actor.UserID,
		}

		if err := tx.InsertProposal(ctx, p); err != nil {
			return apperr.Persistence("inserting proposal", err)
		}

		pl.reach(StageProposalPersisted)

		proj := ProjectFromProposal(p, nil)
		if err := tx.InsertProject(ctx, proj); err != nil {
			return apperr.Persistence("inserting project", err)
		}

		pl.reach(StageProjectPersisted)

		prog := ProgressFromProposal(p, proj, nil)
		if err := tx.InsertProgress(ctx, prog); err != nil {
			return apperr.Persistence("inserting progress", err)
		}

		pl.reach(StageProgressPersisted)

		res = &Result{Proposal: p, Project: proj, Progress: prog}

		return nil
	}, s.txOptions("proposal.create", txn.WithDuplicateRetry())...)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Update patches a proposal and re-derives its project and progress in the
// same transaction. The reference number is never recomputed.
func (s *Service) Update(ctx context.Context, actor *auth.Actor, id uuid.UUID, params UpdateParams) (*Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "proposal.Update", trace.WithAttributes(attribute.String("id", id.String())))
	defer span.End()

	p, err := s.update(ctx, actor, id, params)
	if err != nil {
		kind := apperr.Kind(err)

		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		pipelineTotal.WithLabelValues("update", string(StageAborted), kind).Inc()
		s.logger.Warn("proposal update aborted", "id", id, "kind", kind, "error", err)

		return nil, err
	}

	pipelineTotal.WithLabelValues("update", string(StageCommitted), apperr.Kind(nil)).Inc()
	s.logger.Info("proposal updated", "id", p.ID, "reference_no", p.ReferenceNo, "by", actor.UserID)

	return p, nil
}

func (s *Service) update(ctx context.Context, actor *auth.Actor, id uuid.UUID, params UpdateParams) (*Proposal, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	if err := actor.Require(writeRoles...); err != nil {
		return nil, err
	}

	var updated *Proposal

	err := txn.Run(ctx, s.repo.Begin, func(ctx context.Context, tx Tx) error {
		current, err := tx.GetProposalForUpdate(ctx, id)
		if err != nil {
			return apperr.Persistence("loading proposal", err)
		}

		if err := actor.RequireDistrict(current.Location.DistrictCode, writeRoles...); err != nil {
			return err
		}

		prevProject, err := tx.GetProject(ctx, current.ID)
		if err != nil {
			return apperr.Persistence("loading project", err)
		}

		prevProgress, err := tx.GetProgress(ctx, prevProject.ID)
		if err != nil {
			return apperr.Persistence("loading progress", err)
		}

		p := applyPatch(current, params)
		p.ActionType = ActionEdited
		p.UpdatedBy = actor.UserID

		if p.Amount.LessThan(prevProgress.TransferredAmount) {
			return apperr.Invalid("proposal_amount", "%s is below the %s already transferred",
				p.Amount.StringFixed(2), prevProgress.TransferredAmount.StringFixed(2))
		}

		if err := tx.UpdateProposal(ctx, p); err != nil {
			return apperr.Persistence("updating proposal", err)
		}

		if err := tx.UpdateProject(ctx, ProjectFromProposal(p, prevProject)); err != nil {
			return apperr.Persistence("updating project", err)
		}

		prog := ProgressFromProposal(p, prevProject, prevProgress)
		if params.AgencyID != nil {
			prog.AgencyID = *params.AgencyID
		}

		if err := tx.UpdateProgress(ctx, prog); err != nil {
			return apperr.Persistence("updating progress", err)
		}

		updated = p

		return nil
	}, s.txOptions("proposal.update")...)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func applyPatch(current *Proposal, params UpdateParams) *Proposal {
	p := *current

	if params.Sector != nil {
		p.Sector = *params.Sector
	}

	if params.Department != nil {
		p.Department = *params.Department
	}

	if params.RecommenderID != nil {
		p.RecommenderID = *params.RecommenderID
	}

	if params.RecommenderType != nil {
		p.RecommenderType = *params.RecommenderType
	}

	if params.Amount != nil {
		p.Amount = *params.Amount
	}

	if len(params.PermissibleWorks) > 0 {
		p.PermissibleWorks = params.PermissibleWorks
	}

	if params.DLCApproved != nil {
		p.DLCApproved = *params.DLCApproved
	}

	if params.NodalMinisterApproved != nil {
		p.NodalMinisterApproved = *params.NodalMinisterApproved
	}

	if params.ManualReferenceNo != nil {
		p.ManualReferenceNo = *params.ManualReferenceNo
	}

	if params.AgencyID != nil {
		p.AgencyID = *params.AgencyID
	}

	return &p
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	return s.repo.GetProposal(ctx, id)
}

// GetProject returns the project mirroring the proposal id.
func (s *Service) GetProject(ctx context.Context, proposalID uuid.UUID) (*Project, error) {
	return s.repo.GetProject(ctx, proposalID)
}

// GetProgress returns the progress of the project mirroring the proposal id.
func (s *Service) GetProgress(ctx context.Context, proposalID uuid.UUID) (*Progress, error) {
	proj, err := s.repo.GetProject(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}

	return s.repo.GetProgress(ctx, proj.ID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Proposal, error) {
	return s.repo.ListProposals(ctx, filter)
}

func (s *Service) txOptions(op string, extra ...txn.Option) []txn.Option {
	opts := []txn.Option{txn.WithOp(op), txn.WithLogger(s.logger)}
	opts = append(opts, s.txOpts...)

	return append(opts, extra...)
}
