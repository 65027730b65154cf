package location

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/auth"
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
	"github.com/MrJamesThe3rd/schemeportal/internal/txn"
	"github.com/MrJamesThe3rd/schemeportal/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=location
type Repository interface {
	Begin(ctx context.Context) (Tx, error)
	ListPanchayats(ctx context.Context, filter PanchayatFilter) ([]*Panchayat, error)
	ListVillages(ctx context.Context, panchayatID uuid.UUID) ([]*Village, error)
}

type Tx interface {
	Sequences() sequence.Store
	GetPanchayat(ctx context.Context, id uuid.UUID) (*Panchayat, error)
	PanchayatByCode(ctx context.Context, code string) (*Panchayat, error)
	InsertPanchayat(ctx context.Context, p *Panchayat) error
	InsertVillage(ctx context.Context, v *Village) error
	Commit() error
	Rollback() error
}

type PanchayatFilter struct {
	DistrictCode string
	BlockCode    string
	TempOnly     bool
}

// PanchayatParams creates a panchayat. An empty Code assigns a temp code.
type PanchayatParams struct {
	DistrictCode string `json:"district_code" validate:"required,max=32"`
	BlockCode    string `json:"block_code" validate:"required,max=32"`
	Name         string `json:"name" validate:"required,max=200"`
	Code         string `json:"code" validate:"max=32,excludesall=/"`
}

// VillageParams creates a village. An empty Code assigns a temp code.
type VillageParams struct {
	PanchayatID uuid.UUID `json:"panchayat_id" validate:"required"`
	Name        string    `json:"name" validate:"required,max=200"`
	Code        string    `json:"code" validate:"max=32,excludesall=/"`
}

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
		allocator: sequence.ScanAllocator{},
		now:       time.Now,
		logger:    slog.Default(),
		tracer:    otel.Tracer("schemeportal/location"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) CreatePanchayat(ctx context.Context, actor *auth.Actor, params PanchayatParams) (*Panchayat, error) {
	ctx, span := s.tracer.Start(ctx, "location.CreatePanchayat", trace.WithAttributes(
		attribute.String("district_code", params.DistrictCode),
	))
	defer span.End()

	var created *Panchayat

	err := s.authorize(actor, params.DistrictCode)
	if err == nil {
		err = validate.Struct(params)
	}

	if err == nil {
		err = s.run(ctx, "location.create_panchayat", func(ctx context.Context, tx Tx) error {
			p, err := s.insertPanchayat(ctx, tx, actor, params)
			if err != nil {
				return err
			}

			created = p

			return nil
		})
	}

	s.observe(span, "create_panchayat", err)

	if err != nil {
		return nil, err
	}

	s.logger.Info("panchayat created", "id", created.ID, "code", created.Code, "temp", created.IsTemp, "by", actor.UserID)

	return created, nil
}

func (s *Service) CreateVillage(ctx context.Context, actor *auth.Actor, params VillageParams) (*Village, error) {
	ctx, span := s.tracer.Start(ctx, "location.CreateVillage", trace.WithAttributes(
		attribute.String("panchayat_id", params.PanchayatID.String()),
	))
	defer span.End()

	var created *Village

	err := actor.Require(writeRoles...)
	if err == nil {
		err = validate.Struct(params)
	}

	if err == nil {
		err = s.run(ctx, "location.create_village", func(ctx context.Context, tx Tx) error {
			p, err := tx.GetPanchayat(ctx, params.PanchayatID)
			if err != nil {
				return apperr.Persistence("loading panchayat", err)
			}

			if err := s.authorize(actor, p.DistrictCode); err != nil {
				return err
			}

			v, err := s.insertVillage(ctx, tx, actor, p.ID, params)
			if err != nil {
				return err
			}

			created = v

			return nil
		})
	}

	s.observe(span, "create_village", err)

	if err != nil {
		return nil, err
	}

	s.logger.Info("village created", "id", created.ID, "code", created.Code, "temp", created.IsTemp, "by", actor.UserID)

	return created, nil
}

// Import creates every row of an uploaded sheet in one transaction. Either
// all rows are written or none are.
func (s *Service) Import(ctx context.Context, actor *auth.Actor, r io.Reader) (*ImportResult, error) {
	ctx, span := s.tracer.Start(ctx, "location.Import")
	defer span.End()

	res, err := s.importSheet(ctx, actor, r)
	s.observe(span, "import", err)

	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("layout", string(res.Layout)),
		attribute.Int("rows", res.Created()),
	)
	s.logger.Info("location sheet imported",
		"layout", res.Layout, "charset", res.Charset, "rows", res.Created(), "by", actor.UserID)

	return res, nil
}

func (s *Service) importSheet(ctx context.Context, actor *auth.Actor, r io.Reader) (*ImportResult, error) {
	if err := actor.Require(writeRoles...); err != nil {
		return nil, err
	}

	sheet, err := ParseSheet(r)
	if err != nil {
		return nil, err
	}

	if len(sheet.Rows) == 0 {
		return nil, apperr.Invalid("file", "contains no %s", sheet.Layout)
	}

	if err := validateRows(sheet); err != nil {
		return nil, err
	}

	var res *ImportResult

	err = s.run(ctx, "location.import", func(ctx context.Context, tx Tx) error {
		res = &ImportResult{Layout: sheet.Layout, Charset: sheet.Charset}

		switch sheet.Layout {
		case LayoutPanchayats:
			return s.importPanchayats(ctx, tx, actor, sheet.Rows, res)
		case LayoutVillages:
			return s.importVillages(ctx, tx, actor, sheet.Rows, res)
		default:
			return fmt.Errorf("unhandled layout %q", sheet.Layout)
		}
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (s *Service) importPanchayats(ctx context.Context, tx Tx, actor *auth.Actor, rows []Row, res *ImportResult) error {
	for _, row := range rows {
		if err := s.authorize(actor, row.DistrictCode); err != nil {
			return fmt.Errorf("line %d: %w", row.Line, err)
		}

		p, err := s.insertPanchayat(ctx, tx, actor, panchayatParams(row))
		if err != nil {
			return fmt.Errorf("line %d: %w", row.Line, err)
		}

		res.Panchayats = append(res.Panchayats, p)
	}

	return nil
}

func (s *Service) importVillages(ctx context.Context, tx Tx, actor *auth.Actor, rows []Row, res *ImportResult) error {
	parents := make(map[string]*Panchayat)

	for _, row := range rows {
		parent, ok := parents[row.PanchayatCode]
		if !ok {
			p, err := tx.PanchayatByCode(ctx, row.PanchayatCode)
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.Invalid(fmt.Sprintf("line %d", row.Line), "unknown panchayat code %q", row.PanchayatCode)
			}

			if err != nil {
				return apperr.Persistence("loading panchayat", err)
			}

			if err := s.authorize(actor, p.DistrictCode); err != nil {
				return fmt.Errorf("line %d: %w", row.Line, err)
			}

			parent, parents[row.PanchayatCode] = p, p
		}

		v, err := s.insertVillage(ctx, tx, actor, parent.ID, villageParams(row, parent.ID))
		if err != nil {
			return fmt.Errorf("line %d: %w", row.Line, err)
		}

		res.Villages = append(res.Villages, v)
	}

	return nil
}

func (s *Service) insertPanchayat(ctx context.Context, tx Tx, actor *auth.Actor, params PanchayatParams) (*Panchayat, error) {
	code, temp, err := s.codeFor(ctx, tx, sequence.KindPanchayatTemp, params.Code)
	if err != nil {
		return nil, err
	}

	p := &Panchayat{
		DistrictCode: params.DistrictCode,
		BlockCode:    params.BlockCode,
		Name:         params.Name,
		Code:         code,
		IsTemp:       temp,
		CreatedBy:    actor.UserID,
		CreatedAt:    s.now(),
	}

	if err := tx.InsertPanchayat(ctx, p); err != nil {
		return nil, apperr.Persistence("inserting panchayat", err)
	}

	return p, nil
}

func (s *Service) insertVillage(ctx context.Context, tx Tx, actor *auth.Actor, panchayatID uuid.UUID, params VillageParams) (*Village, error) {
	code, temp, err := s.codeFor(ctx, tx, sequence.KindVillageTemp, params.Code)
	if err != nil {
		return nil, err
	}

	v := &Village{
		PanchayatID: panchayatID,
		Name:        params.Name,
		Code:        code,
		IsTemp:      temp,
		CreatedBy:   actor.UserID,
		CreatedAt:   s.now(),
	}

	if err := tx.InsertVillage(ctx, v); err != nil {
		return nil, apperr.Persistence("inserting village", err)
	}

	return v, nil
}

// codeFor keeps an official code and otherwise mints the next temp code.
func (s *Service) codeFor(ctx context.Context, tx Tx, kind sequence.Kind, official string) (string, bool, error) {
	if official != "" {
		return official, false, nil
	}

	code, err := sequence.NextCode(ctx, s.allocator, tx.Sequences(), TempScope(kind), sequence.TempCode())
	if err != nil {
		return "", false, apperr.Persistence("allocating temp code", err)
	}

	return code, true, nil
}

// authorize keeps district users inside their own district.
func (s *Service) authorize(actor *auth.Actor, districtCode string) error {
	return actor.RequireDistrict(districtCode, writeRoles...)
}

func (s *Service) ListPanchayats(ctx context.Context, filter PanchayatFilter) ([]*Panchayat, error) {
	return s.repo.ListPanchayats(ctx, filter)
}

func (s *Service) ListVillages(ctx context.Context, panchayatID uuid.UUID) ([]*Village, error) {
	return s.repo.ListVillages(ctx, panchayatID)
}

// run executes fn in a transaction. Every location write may mint a temp
// code, so a duplicate key is retried once with a fresh read.
func (s *Service) run(ctx context.Context, op string, fn func(context.Context, Tx) error) error {
	opts := []txn.Option{txn.WithOp(op), txn.WithLogger(s.logger)}
	opts = append(opts, s.txOpts...)
	opts = append(opts, txn.WithDuplicateRetry())

	return txn.Run(ctx, s.repo.Begin, fn, opts...)
}

func (s *Service) observe(span trace.Span, op string, err error) {
	kind := apperr.Kind(err)
	writesTotal.WithLabelValues(op, kind).Inc()

	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	s.logger.Warn("location write rejected", "op", op, "kind", kind, "error", err)
}

func validateRows(sheet *Sheet) error {
	var invalid apperr.ValidationError

	for _, row := range sheet.Rows {
		var err error

		switch sheet.Layout {
		case LayoutPanchayats:
			err = validate.Struct(panchayatParams(row))
		case LayoutVillages:
			err = validate.Struct(VillageParams{PanchayatID: uuid.Max, Name: row.Name, Code: row.Code})
		}

		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				invalid.Fields = append(invalid.Fields, apperr.FieldError{
					Field:   fmt.Sprintf("line %d: %s", row.Line, f.Field),
					Message: f.Message,
				})
			}
		}
	}

	if len(invalid.Fields) > 0 {
		return &invalid
	}

	return nil
}

func panchayatParams(row Row) PanchayatParams {
	return PanchayatParams{
		DistrictCode: row.DistrictCode,
		BlockCode:    row.BlockCode,
		Name:         row.Name,
		Code:         row.Code,
	}
}

func villageParams(row Row, panchayatID uuid.UUID) VillageParams {
	return VillageParams{PanchayatID: panchayatID, Name: row.Name, Code: row.Code}
}
