//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/auth"
	"github.com/MrJamesThe3rd/schemeportal/internal/database/dbtest"
	"github.com/MrJamesThe3rd/schemeportal/internal/proposal"
	"github.com/MrJamesThe3rd/schemeportal/internal/proposal/store"
	"github.com/MrJamesThe3rd/schemeportal/internal/reference"
)

type failingProgressTx struct {
	proposal.Tx
}

func (failingProgressTx) InsertProgress(context.Context, *proposal.Progress) error {
	return errors.New("forced progress failure")
}

type failingRepo struct {
	*store.Store
}

func (r failingRepo) Begin(ctx context.Context) (proposal.Tx, error) {
	tx, err := r.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return failingProgressTx{Tx: tx}, nil
}

func params() proposal.CreateParams {
	return proposal.CreateParams{
		Sector:          "Roads",
		Department:      "Public Works",
		RecommenderID:   "mla-7",
		RecommenderType: "mla",
		Location: proposal.Location{
			Area:             reference.Rural,
			StateCode:        "03",
			DistrictID:       "d-1",
			DistrictCode:     "D1",
			ConstituencyCode: "C1",
			BlockCode:        "B1",
			PanchayatCode:    "PCH01",
		},
		Amount:           decimal.NewFromInt(250000),
		PermissibleWorks: []string{"cc road"},
		AgencyID:         "agency-4",
	}
}

func TestIntegration_ProposalPipeline(t *testing.T) {
	db := dbtest.Postgres(t)
	ctx := context.Background()
	actor := &auth.Actor{UserID: "u1", Role: auth.RoleDistrict, DistrictCode: "D1"}
	clock := proposal.WithClock(func() time.Time { return time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC) })

	st := store.New(db)

	failing := proposal.NewService(failingRepo{Store: st}, clock)

	_, err := failing.Create(ctx, actor, params())
	require.ErrorIs(t, err, apperr.ErrPersistence)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM master_proposal`).Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM master_project`).Scan(&count))
	assert.Zero(t, count)

	svc := proposal.NewService(st, clock)

	res, err := svc.Create(ctx, actor, params())
	require.NoError(t, err)
	assert.Equal(t, "03/D1/B1/C1/PCH01/25-26/0001", res.Proposal.ReferenceNo)

	res2, err := svc.Create(ctx, actor, params())
	require.NoError(t, err)
	assert.Equal(t, "03/D1/B1/C1/PCH01/25-26/0002", res2.Proposal.ReferenceNo)

	amount := decimal.NewFromInt(300000)
	updated, err := svc.Update(ctx, actor, res.Proposal.ID, proposal.UpdateParams{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, res.Proposal.ReferenceNo, updated.ReferenceNo)

	proj, err := svc.GetProject(ctx, res.Proposal.ID)
	require.NoError(t, err)
	assert.True(t, proj.Amount.Equal(amount))
	assert.Equal(t, []string{"cc road"}, proj.PermissibleWorks)

	prog, err := svc.GetProgress(ctx, res.Proposal.ID)
	require.NoError(t, err)
	assert.True(t, prog.RemainingAmount.Equal(amount))

	// An older row holding a higher running number still sets the floor.
	_, err = db.ExecContext(ctx, `UPDATE master_proposal SET reference_no = '03/D1/B1/C1/PCH01/25-26/0009' WHERE id = $1`, res.Proposal.ID)
	require.NoError(t, err)

	res3, err := svc.Create(ctx, actor, params())
	require.NoError(t, err)
	assert.Equal(t, "03/D1/B1/C1/PCH01/25-26/0010", res3.Proposal.ReferenceNo)

	list, err := svc.List(ctx, proposal.ListFilter{StateCode: "03"})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
