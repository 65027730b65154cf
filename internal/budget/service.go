package budget

import (
	"context"
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
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
	"github.com/MrJamesThe3rd/schemeportal/internal/txn"
	"github.com/MrJamesThe3rd/schemeportal/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	Begin(ctx context.Context) (Tx, error)
	Get(ctx context.Context, id uuid.UUID) (*Head, error)
	List(ctx context.Context, filter ListFilter) ([]*Head, error)
}

// Tx is a budget write transaction. LockScope serializes writers of one
// district and fiscal year until the transaction ends.
type Tx interface {
	Sequences() sequence.Store
	LockScope(ctx context.Context, scope Scope) error
	ListScope(ctx context.Context, scope Scope) ([]*Head, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Head, error)
	Insert(ctx context.Context, h *Head) error
	Update(ctx context.Context, h *Head) error
	Commit() error
	Rollback() error
}

type ListFilter struct {
	DistrictID     string
	FiscalYear     *fiscal.Year
	IncludeDeleted bool
}

type CreateParams struct {
	DistrictID       string          `json:"district_id" validate:"required"`
	DistrictCode     string          `json:"district_code" validate:"required,excludesall=/"`
	DistrictName     string          `json:"district_name"`
	FiscalYear       fiscal.Year     `json:"fiscal_year"`
	AllocatedAmount  decimal.Decimal `json:"allocated_amount" validate:"positive_decimal"`
	SanctionedAmount decimal.Decimal `json:"sanctioned_amount" validate:"nonnegative_decimal"`
	ReleasedAmount   decimal.Decimal `json:"released_amount" validate:"nonnegative_decimal"`
}

// UpdateParams is a partial update; nil fields are left unchanged.
type UpdateParams struct {
	DistrictName     *string          `json:"district_name"`
	AllocatedAmount  *decimal.Decimal `json:"allocated_amount"`
	SanctionedAmount *decimal.Decimal `json:"sanctioned_amount"`
	ReleasedAmount   *decimal.Decimal `json:"released_amount"`
}

// Service owns every write to budget heads.
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
		allocator: sequence.ScanAllocator{},
		now:       time.Now,
		logger:    slog.Default(),
		tracer:    otel.Tracer("schemeportal/budget"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Create(ctx context.Context, actor *auth.Actor, params CreateParams) (*Head, error) {
	ctx, span := s.tracer.Start(ctx, "budget.Create", trace.WithAttributes(
		attribute.String("district_id", params.DistrictID),
	))
	defer span.End()

	head, err := s.create(ctx, actor, params)
	s.observe(span, "create", err)

	if err != nil {
		return nil, err
	}

	s.logger.Info("budget head created",
		"id", head.ID, "sanction_no", head.SanctionNo,
		"district_id", head.DistrictID, "fiscal_year", head.FiscalYear,
		"by", actor.UserID)

	return head, nil
}

func (s *Service) create(ctx context.Context, actor *auth.Actor, params CreateParams) (*Head, error) {
	if err := actor.Require(auth.RolePlanning, auth.RoleAdmin); err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	now := s.now()

	fy := params.FiscalYear
	if fy.IsZero() {
		fy = fiscal.Of(now)
	}

	var created *Head

	err := txn.Run(ctx, s.repo.Begin, func(ctx context.Context, tx Tx) error {
		h := &Head{
			DistrictID:       params.DistrictID,
			DistrictCode:     params.DistrictCode,
			DistrictName:     params.DistrictName,
			FiscalYear:       fy,
			AllocatedAmount:  params.AllocatedAmount,
			SanctionedAmount: params.SanctionedAmount,
			ReleasedAmount:   params.ReleasedAmount,
			CreatedBy:        actor.UserID,
			UpdatedBy:        actor.UserID,
		}

		others, err := s.lockScope(ctx, tx, h.Scope())
		if err != nil {
			return err
		}

		if err := Check(h, nil, others); err != nil {
			return err
		}

		h.SanctionNo, err = sequence.NextCode(ctx, s.allocator, tx.Sequences(), h.Scope().Sequence(), SanctionPattern(h.DistrictCode, fy))
		if err != nil {
			return apperr.Persistence("allocating sanction number", err)
		}

		stampDates(h, now)

		if err := tx.Insert(ctx, h); err != nil {
			return apperr.Persistence("inserting budget head", err)
		}

		created = h

		return nil
	}, s.txOptions("budget.create", txn.WithDuplicateRetry())...)
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, id uuid.UUID, params UpdateParams) (*Head, error) {
	ctx, span := s.tracer.Start(ctx, "budget.Update", trace.WithAttributes(attribute.String("id", id.String())))
	defer span.End()

	head, err := s.update(ctx, actor, id, params)
	s.observe(span, "update", err)

	if err != nil {
		return nil, err
	}

	s.logger.Info("budget head updated", "id", head.ID, "sanction_no", head.SanctionNo, "by", actor.UserID)

	return head, nil
}

func (s *Service) update(ctx context.Context, actor *auth.Actor, id uuid.UUID, params UpdateParams) (*Head, error) {
	if err := actor.Require(auth.RolePlanning, auth.RoleAdmin); err != nil {
		return nil, err
	}

	now := s.now()

	var updated *Head

	err := txn.Run(ctx, s.repo.Begin, func(ctx context.Context, tx Tx) error {
		current, err := s.loadLive(ctx, tx, id)
		if err != nil {
			return err
		}

		others, err := s.lockScope(ctx, tx, current.Scope())
		if err != nil {
			return err
		}

		next := *current
		if params.DistrictName != nil {
			next.DistrictName = *params.DistrictName
		}

		if params.AllocatedAmount != nil {
			next.AllocatedAmount = *params.AllocatedAmount
		}

		if params.SanctionedAmount != nil {
			next.SanctionedAmount = *params.SanctionedAmount
		}

		if params.ReleasedAmount != nil {
			next.ReleasedAmount = *params.ReleasedAmount
		}

		if err := Check(&next, current, excluding(others, id)); err != nil {
			return err
		}

		stampDates(&next, now)
		next.UpdatedBy = actor.UserID

		if err := tx.Update(ctx, &next); err != nil {
			return apperr.Persistence("updating budget head", err)
		}

		updated = &next

		return nil
	}, s.txOptions("budget.update")...)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete marks a head deleted, releasing its sanction from the scope total.
func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "budget.Delete", trace.WithAttributes(attribute.String("id", id.String())))
	defer span.End()

	err := s.delete(ctx, actor, id)
	s.observe(span, "delete", err)

	if err != nil {
		return err
	}

	s.logger.Info("budget head deleted", "id", id, "by", actor.UserID)

	return nil
}

func (s *Service) delete(ctx context.Context, actor *auth.Actor, id uuid.UUID) error {
	if err := actor.Require(auth.RolePlanning, auth.RoleAdmin); err != nil {
		return err
	}

	return txn.Run(ctx, s.repo.Begin, func(ctx context.Context, tx Tx) error {
		current, err := s.loadLive(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := s.lockScope(ctx, tx, current.Scope()); err != nil {
			return err
		}

		current.IsDeleted = true
		current.UpdatedBy = actor.UserID

		if err := tx.Update(ctx, current); err != nil {
			return apperr.Persistence("deleting budget head", err)
		}

		return nil
	}, s.txOptions("budget.delete")...)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Head, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Head, error) {
	return s.repo.List(ctx, filter)
}

// lockScope takes the scope lock and returns the live heads in it.
func (s *Service) lockScope(ctx context.Context, tx Tx, scope Scope) ([]*Head, error) {
	if err := tx.LockScope(ctx, scope); err != nil {
		return nil, apperr.Persistence("locking budget scope", err)
	}

	others, err := tx.ListScope(ctx, scope)
	if err != nil {
		return nil, apperr.Persistence("listing budget scope", err)
	}

	return others, nil
}

func (s *Service) loadLive(ctx context.Context, tx Tx, id uuid.UUID) (*Head, error) {
	current, err := tx.GetForUpdate(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("loading budget head", err)
	}

	if current.IsDeleted {
		return nil, apperr.NotFound("budget head", id)
	}

	return current, nil
}

func (s *Service) txOptions(op string, extra ...txn.Option) []txn.Option {
	opts := []txn.Option{txn.WithOp(op), txn.WithLogger(s.logger)}
	opts = append(opts, s.txOpts...)

	return append(opts, extra...)
}

func (s *Service) observe(span trace.Span, op string, err error) {
	kind := apperr.Kind(err)
	writesTotal.WithLabelValues(op, kind).Inc()

	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	s.logger.Warn("budget write rejected", "op", op, "kind", kind, "error", err)
}

func excluding(heads []*Head, id uuid.UUID) []*Head {
	out := make([]*Head, 0, len(heads))

	for _, h := range heads {
		if h.ID != id {
			out = append(out, h)
		}
	}

	return out
}
