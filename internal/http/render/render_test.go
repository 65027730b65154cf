package render_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/budget"
	"github.com/MrJamesThe3rd/schemeportal/internal/http/render"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: apperr.Invalid("name", "is required"), want: http.StatusBadRequest},
		{name: "missing location", err: apperr.ErrMissingLocationContext, want: http.StatusBadRequest},
		{name: "unauthorized", err: apperr.Unauthorized("no token"), want: http.StatusUnauthorized},
		{name: "not found", err: apperr.NotFound("proposal", 1), want: http.StatusNotFound},
		{name: "duplicate", err: fmt.Errorf("insert: %w", apperr.ErrDuplicateKey), want: http.StatusConflict},
		{
			name: "cumulative",
			err:  &budget.CumulativeSanctionExceededError{Attempted: decimal.NewFromInt(110000), Ceiling: decimal.NewFromInt(100000)},
			want: http.StatusUnprocessableEntity,
		},
		{name: "immutable", err: &budget.ImmutableFieldError{Field: "allocated_amount"}, want: http.StatusUnprocessableEntity},
		{name: "persistence", err: apperr.Persistence("insert", errors.New("conn reset")), want: http.StatusInternalServerError},
		{name: "unclassified", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.Status(tt.err))
		})
	}
}

func TestError_Body(t *testing.T) {
	t.Run("validation lists fields", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := &apperr.ValidationError{Fields: []apperr.FieldError{{Field: "name", Message: "is required"}}}

		render.Error(rec, httptest.NewRequest(http.MethodPost, "/", nil), err)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"validation","message":"validation failed: name: is required","fields":[{"field":"name","message":"is required"}]}`, rec.Body.String())
	})

	t.Run("internal errors hide detail", func(t *testing.T) {
		rec := httptest.NewRecorder()

		render.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), apperr.Persistence("insert", errors.New("password=hunter2")))

		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "internal error", body["message"])
		assert.Equal(t, "persistence", body["error"])
	})
}
