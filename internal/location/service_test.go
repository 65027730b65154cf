package location_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/auth"
	"github.com/MrJamesThe3rd/schemeportal/internal/location"
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
	"github.com/MrJamesThe3rd/schemeportal/internal/txn"
)

var (
	admin    = &auth.Actor{UserID: "u-admin", Role: auth.RoleAdmin}
	district = &auth.Actor{UserID: "u-d1", Role: auth.RoleDistrict, DistrictCode: "D1"}
	viewer   = &auth.Actor{UserID: "u-view", Role: auth.RoleViewer}
	fixedAt  = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
)

func newService(repo location.Repository, opts ...location.Option) *location.Service {
	opts = append([]location.Option{
		location.WithClock(func() time.Time { return fixedAt }),
		location.WithTxOptions(txn.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} })),
	}, opts...)

	return location.NewService(repo, opts...)
}

func TestService_CreatePanchayat(t *testing.T) {
	ctx := context.Background()

	t.Run("temp codes increase without gaps", func(t *testing.T) {
		repo := newMemRepo()
		svc := newService(repo)

		for i, want := range []string{"TEMP-000001", "TEMP-000002", "TEMP-000003"} {
			p, err := svc.CreatePanchayat(ctx, admin, location.PanchayatParams{
				DistrictCode: "D1", BlockCode: "B1", Name: "Rampur " + string(rune('A'+i)),
			})
			require.NoError(t, err)

			assert.Equal(t, want, p.Code)
			assert.True(t, p.IsTemp)
			assert.Equal(t, "u-admin", p.CreatedBy)
			assert.Equal(t, fixedAt, p.CreatedAt)
		}
	})

	t.Run("official code is kept and skipped by numbering", func(t *testing.T) {
		repo := newMemRepo()
		repo.seedPanchayat(location.Panchayat{DistrictCode: "D1", BlockCode: "B1", Code: "TEMP-000041", IsTemp: true})
		svc := newService(repo)

		official, err := svc.CreatePanchayat(ctx, admin, location.PanchayatParams{
			DistrictCode: "D1", BlockCode: "B1", Name: "Sitapur", Code: "PCH07",
		})
		require.NoError(t, err)
		assert.Equal(t, "PCH07", official.Code)
		assert.False(t, official.IsTemp)

		temp, err := svc.CreatePanchayat(ctx, admin, location.PanchayatParams{
			DistrictCode: "D1", BlockCode: "B1", Name: "Lakhanpur",
		})
		require.NoError(t, err)
		assert.Equal(t, "TEMP-000042", temp.Code)
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name    string
			actor   *auth.Actor
			params  location.PanchayatParams
			wantErr error
		}{
			{name: "no actor", actor: nil, params: location.PanchayatParams{DistrictCode: "D1", BlockCode: "B1", Name: "X"}, wantErr: apperr.ErrUnauthorized},
			{name: "viewer", actor: viewer, params: location.PanchayatParams{DistrictCode: "D1", BlockCode: "B1", Name: "X"}, wantErr: apperr.ErrUnauthorized},
			{name: "other district", actor: district, params: location.PanchayatParams{DistrictCode: "D2", BlockCode: "B1", Name: "X"}, wantErr: apperr.ErrUnauthorized},
			{name: "missing name", actor: admin, params: location.PanchayatParams{DistrictCode: "D1", BlockCode: "B1"}, wantErr: apperr.ErrValidation},
			{name: "slash in code", actor: admin, params: location.PanchayatParams{DistrictCode: "D1", BlockCode: "B1", Name: "X", Code: "P/1"}, wantErr: apperr.ErrValidation},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := newMemRepo()

				_, err := newService(repo).CreatePanchayat(ctx, tt.actor, tt.params)
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, repo.begins)
			})
		}
	})

	t.Run("own district is allowed", func(t *testing.T) {
		p, err := newService(newMemRepo()).CreatePanchayat(ctx, district, location.PanchayatParams{
			DistrictCode: "D1", BlockCode: "B1", Name: "Rampur",
		})
		require.NoError(t, err)
		assert.Equal(t, "TEMP-000001", p.Code)
	})

	t.Run("duplicate official code surfaces after one retry", func(t *testing.T) {
		repo := newMemRepo()
		repo.seedPanchayat(location.Panchayat{DistrictCode: "D1", BlockCode: "B1", Code: "PCH07"})

		_, err := newService(repo).CreatePanchayat(ctx, admin, location.PanchayatParams{
			DistrictCode: "D1", BlockCode: "B1", Name: "Sitapur", Code: "PCH07",
		})
		require.ErrorIs(t, err, apperr.ErrDuplicateKey)
		assert.Equal(t, 2, repo.begins)
		assert.Zero(t, repo.commits)
	})
}

func TestService_CreatePanchayat_RetriesDuplicateTempCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := location.NewMockRepository(ctrl)
	first := location.NewMockTx(ctrl)
	second := location.NewMockTx(ctrl)

	// Another writer took TEMP-000001 between the read and the insert.
	stale := &queuedCodes{codes: []string{"", "TEMP-000001"}}

	gomock.InOrder(
		repo.EXPECT().Begin(gomock.Any()).Return(first, nil),
		first.EXPECT().Sequences().Return(stale),
		first.EXPECT().InsertPanchayat(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *location.Panchayat) error {
				assert.Equal(t, "TEMP-000001", p.Code)
				return apperr.ErrDuplicateKey
			}),
		first.EXPECT().Rollback().Return(nil),
		repo.EXPECT().Begin(gomock.Any()).Return(second, nil),
		second.EXPECT().Sequences().Return(stale),
		second.EXPECT().InsertPanchayat(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *location.Panchayat) error {
				p.ID = uuid.New()
				return nil
			}),
		second.EXPECT().Commit().Return(nil),
		second.EXPECT().Rollback().Return(nil),
	)

	p, err := newService(repo).CreatePanchayat(context.Background(), admin, location.PanchayatParams{
		DistrictCode: "D1", BlockCode: "B1", Name: "Rampur",
	})
	require.NoError(t, err)
	assert.Equal(t, "TEMP-000002", p.Code)
}

// queuedCodes answers LastCode with the queued codes in order.
type queuedCodes struct {
	codes []string
}

func (q *queuedCodes) LastCode(context.Context, sequence.Scope) (string, error) {
	code := q.codes[0]
	q.codes = q.codes[1:]

	return code, nil
}

func (q *queuedCodes) Bump(context.Context, sequence.Scope, int64) (int64, error) {
	return 0, errors.New("not used")
}

func TestService_CreateVillage(t *testing.T) {
	ctx := context.Background()

	repo := newMemRepo()
	parent := repo.seedPanchayat(location.Panchayat{DistrictCode: "D1", BlockCode: "B1", Name: "Rampur", Code: "PCH01"})
	svc := newService(repo)

	v, err := svc.CreateVillage(ctx, district, location.VillageParams{PanchayatID: parent.ID, Name: "Kheda"})
	require.NoError(t, err)
	assert.Equal(t, "TEMP-000001", v.Code)
	assert.Equal(t, parent.ID, v.PanchayatID)

	// Village numbering is independent of panchayat numbering.
	p, err := svc.CreatePanchayat(ctx, admin, location.PanchayatParams{DistrictCode: "D1", BlockCode: "B1", Name: "Sitapur"})
	require.NoError(t, err)
	assert.Equal(t, "TEMP-000001", p.Code)

	t.Run("unknown panchayat", func(t *testing.T) {
		_, err := svc.CreateVillage(ctx, admin, location.VillageParams{PanchayatID: uuid.New(), Name: "Kheda"})
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("panchayat in another district", func(t *testing.T) {
		other := repo.seedPanchayat(location.Panchayat{DistrictCode: "D2", BlockCode: "B9", Name: "Far", Code: "PCH99"})

		_, err := svc.CreateVillage(ctx, district, location.VillageParams{PanchayatID: other.ID, Name: "Kheda"})
		require.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("missing panchayat id", func(t *testing.T) {
		_, err := svc.CreateVillage(ctx, admin, location.VillageParams{Name: "Kheda"})
		require.ErrorIs(t, err, apperr.ErrValidation)
	})

	villages, err := svc.ListVillages(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, villages, 1)
	assert.Equal(t, "Kheda", villages[0].Name)
}

func TestService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("panchayats in one transaction", func(t *testing.T) {
		repo := newMemRepo()
		svc := newService(repo)

		csv := "District Code,Block Code,Panchayat Name,Panchayat Code\nD1,B1,Rampur,PCH01\nD1,B1,Sitapur,\nD1,B2,Lakhanpur,\n"

		res, err := svc.Import(ctx, admin, strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, location.LayoutPanchayats, res.Layout)
		require.Equal(t, 3, res.Created())
		assert.Equal(t, "PCH01", res.Panchayats[0].Code)
		assert.Equal(t, "TEMP-000001", res.Panchayats[1].Code)
		assert.Equal(t, "TEMP-000002", res.Panchayats[2].Code)
		assert.Equal(t, 1, repo.begins)
		assert.Equal(t, 1, repo.commits)

		temps, err := svc.ListPanchayats(ctx, location.PanchayatFilter{TempOnly: true})
		require.NoError(t, err)
		assert.Len(t, temps, 2)
	})

	t.Run("villages resolve panchayat codes", func(t *testing.T) {
		repo := newMemRepo()
		parent := repo.seedPanchayat(location.Panchayat{DistrictCode: "D1", BlockCode: "B1", Name: "Rampur", Code: "PCH01"})
		svc := newService(repo)

		csv := "Panchayat Code;Village Name;Village Code\nPCH01;Kheda;\nPCH01;Nangal;VIL09\n"

		res, err := svc.Import(ctx, district, strings.NewReader(csv))
		require.NoError(t, err)

		require.Len(t, res.Villages, 2)
		assert.Equal(t, parent.ID, res.Villages[0].PanchayatID)
		assert.Equal(t, "TEMP-000001", res.Villages[0].Code)
		assert.Equal(t, "VIL09", res.Villages[1].Code)
	})

	t.Run("failure writes nothing", func(t *testing.T) {
		repo := newMemRepo()
		repo.failOn["InsertPanchayat:Lakhanpur"] = errors.New("disk full")
		svc := newService(repo)

		csv := "District Code,Block Code,Panchayat Name\nD1,B1,Rampur\nD1,B1,Sitapur\nD1,B2,Lakhanpur\n"

		_, err := svc.Import(ctx, admin, strings.NewReader(csv))
		require.ErrorIs(t, err, apperr.ErrPersistence)
		assert.Contains(t, err.Error(), "line 4")

		all, err := svc.ListPanchayats(ctx, location.PanchayatFilter{})
		require.NoError(t, err)
		assert.Empty(t, all)
		assert.Zero(t, repo.commits)
	})

	t.Run("unknown panchayat code", func(t *testing.T) {
		repo := newMemRepo()

		_, err := newService(repo).Import(ctx, admin, strings.NewReader("Panchayat Code,Village Name\nPCH404,Kheda\n"))
		require.ErrorIs(t, err, apperr.ErrValidation)
		assert.Zero(t, repo.commits)
	})

	t.Run("district user outside their district", func(t *testing.T) {
		repo := newMemRepo()

		_, err := newService(repo).Import(ctx, district, strings.NewReader("District Code,Block Code,Panchayat Name\nD2,B1,Rampur\n"))
		require.ErrorIs(t, err, apperr.ErrUnauthorized)
		assert.Zero(t, repo.commits)
	})

	t.Run("header without rows", func(t *testing.T) {
		repo := newMemRepo()

		_, err := newService(repo).Import(ctx, admin, strings.NewReader("District Code,Block Code,Panchayat Name\n"))
		require.ErrorIs(t, err, apperr.ErrValidation)
		assert.Zero(t, repo.begins)
	})

	t.Run("over-long name is reported by line", func(t *testing.T) {
		repo := newMemRepo()
		csv := "District Code,Block Code,Panchayat Name\nD1,B1," + strings.Repeat("x", 201) + "\n"

		_, err := newService(repo).Import(ctx, admin, strings.NewReader(csv))

		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "line 2: name", verr.Fields[0].Field)
		assert.Zero(t, repo.begins)
	})
}
