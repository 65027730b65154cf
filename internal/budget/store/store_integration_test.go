//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/auth"
	"github.com/MrJamesThe3rd/schemeportal/internal/budget"
	"github.com/MrJamesThe3rd/schemeportal/internal/budget/store"
	"github.com/MrJamesThe3rd/schemeportal/internal/database/dbtest"
	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
)

func TestIntegration_BudgetScenarios(t *testing.T) {
	db := dbtest.Postgres(t)
	ctx := context.Background()

	svc := budget.NewService(store.New(db),
		budget.WithClock(func() time.Time { return time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC) }),
	)
	actor := &auth.Actor{UserID: "u1", Role: auth.RolePlanning}

	params := func(allocated, sanctioned int64) budget.CreateParams {
		return budget.CreateParams{
			DistrictID:       "d-1",
			DistrictCode:     "D1",
			AllocatedAmount:  decimal.NewFromInt(allocated),
			SanctionedAmount: decimal.NewFromInt(sanctioned),
		}
	}

	first, err := svc.Create(ctx, actor, params(100000, 40000))
	require.NoError(t, err)
	assert.Equal(t, "D1/25-26/001", first.SanctionNo)

	_, err = svc.Create(ctx, actor, params(100000, 70000))
	assert.ErrorIs(t, err, apperr.ErrCumulativeSanctionExceeded)

	_, err = svc.Create(ctx, actor, params(999999, 0))
	assert.ErrorIs(t, err, apperr.ErrAllocationMismatch)

	second, err := svc.Create(ctx, actor, params(100000, 60000))
	require.NoError(t, err)
	assert.Equal(t, "D1/25-26/002", second.SanctionNo)

	changed := decimal.NewFromInt(200000)
	_, err = svc.Update(ctx, actor, first.ID, budget.UpdateParams{AllocatedAmount: &changed})
	assert.ErrorIs(t, err, apperr.ErrImmutableField)

	// Deleting frees the sanctioned amount for the rest of the scope.
	require.NoError(t, svc.Delete(ctx, actor, second.ID))

	more := decimal.NewFromInt(100000)
	updated, err := svc.Update(ctx, actor, first.ID, budget.UpdateParams{SanctionedAmount: &more})
	require.NoError(t, err)
	assert.True(t, updated.SanctionedAmount.Equal(more))

	fy := fiscal.Year{Start: 2025}
	heads, err := svc.List(ctx, budget.ListFilter{DistrictID: "d-1", FiscalYear: &fy})
	require.NoError(t, err)
	require.Len(t, heads, 1)
	assert.True(t, heads[0].AllocatedAmount.Equal(decimal.NewFromInt(100000)))

	_, err = svc.Get(ctx, second.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// Deleted sanction numbers stay taken.
	third, err := svc.Create(ctx, actor, params(100000, 0))
	require.NoError(t, err)
	assert.Equal(t, "D1/25-26/003", third.SanctionNo)
}
