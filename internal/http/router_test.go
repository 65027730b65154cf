package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/schemeportal/internal/auth"
	"github.com/MrJamesThe3rd/schemeportal/internal/budget"
	schemehttp "github.com/MrJamesThe3rd/schemeportal/internal/http"
	budgetHandler "github.com/MrJamesThe3rd/schemeportal/internal/http/budget"
	locationHandler "github.com/MrJamesThe3rd/schemeportal/internal/http/location"
	proposalHandler "github.com/MrJamesThe3rd/schemeportal/internal/http/proposal"
	"github.com/MrJamesThe3rd/schemeportal/internal/location"
	"github.com/MrJamesThe3rd/schemeportal/internal/proposal"
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
)

const secret = "test-secret"

var verifier = auth.NewVerifier(secret, "schemeportal")

// emptyScope answers LastCode for a scope with no codes yet.
type emptyScope struct{}

func (emptyScope) LastCode(context.Context, sequence.Scope) (string, error) { return "", nil }
func (emptyScope) Bump(context.Context, sequence.Scope, int64) (int64, error) {
	return 0, errors.New("not used")
}

func newRouter(t *testing.T, budgetRepo budget.Repository, health func(context.Context) error) http.Handler {
	t.Helper()

	return schemehttp.New(
		schemehttp.Options{Verifier: verifier, CORSOrigins: []string{"*"}, Timeout: time.Second, Health: health},
		budgetHandler.NewHandler(budget.NewService(budgetRepo)),
		proposalHandler.NewHandler(proposal.NewService(nil)),
		locationHandler.NewHandler(location.NewService(nil), 1<<20),
	)
}

func token(t *testing.T, role auth.Role) string {
	t.Helper()

	raw, err := verifier.Issue(auth.Actor{UserID: "u-1", Role: role, StateCode: "03"}, time.Hour)
	require.NoError(t, err)

	return "Bearer " + raw
}

func do(router http.Handler, method, path, authz string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if authz != "" {
		req.Header.Set("Authorization", authz)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestRouter_Health(t *testing.T) {
	rec := do(newRouter(t, nil, nil), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	down := func(context.Context) error { return errors.New("db down") }
	rec = do(newRouter(t, nil, down), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	rec := do(newRouter(t, nil, nil), http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_Authentication(t *testing.T) {
	router := newRouter(t, nil, nil)

	tests := []struct {
		name  string
		authz string
	}{
		{name: "no header", authz: ""},
		{name: "wrong scheme", authz: "Basic dTpw"},
		{name: "garbage token", authz: "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, http.MethodGet, "/api/v1/proposals/"+uuid.NewString(), tt.authz, "")
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeBody(t, rec)["error"])
		})
	}
}

func TestRouter_BudgetCreate(t *testing.T) {
	t.Run("viewer may not write", func(t *testing.T) {
		rec := do(newRouter(t, nil, nil), http.MethodPost, "/api/v1/budget-heads", token(t, auth.RoleViewer),
			`{"district_id":"d-1","district_code":"D1","allocated_amount":"100000"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid payload lists fields", func(t *testing.T) {
		rec := do(newRouter(t, nil, nil), http.MethodPost, "/api/v1/budget-heads", token(t, auth.RolePlanning),
			`{"district_code":"D1","allocated_amount":"0"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "validation", body["error"])
		assert.Len(t, body["fields"], 2)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := do(newRouter(t, nil, nil), http.MethodPost, "/api/v1/budget-heads", token(t, auth.RolePlanning),
			`{"district":"d-1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := budget.NewMockRepository(ctrl)
		tx := budget.NewMockTx(ctrl)

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockScope(gomock.Any(), gomock.Any()).Return(nil)
		tx.EXPECT().ListScope(gomock.Any(), gomock.Any()).Return(nil, nil)
		tx.EXPECT().Sequences().Return(emptyScope{})
		tx.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, h *budget.Head) error {
			h.ID = uuid.New()
			return nil
		})
		tx.EXPECT().Commit().Return(nil)
		tx.EXPECT().Rollback().Return(nil)

		rec := do(newRouter(t, repo, nil), http.MethodPost, "/api/v1/budget-heads", token(t, auth.RolePlanning),
			`{"district_id":"d-1","district_code":"D1","fiscal_year":"25-26","allocated_amount":"100000","sanctioned_amount":"40000"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		body := decodeBody(t, rec)
		assert.Equal(t, "D1/25-26/001", body["sanction_no"])
		assert.Equal(t, "25-26", body["fiscal_year"])
		assert.Equal(t, "40000", body["sanctioned_amount"])
	})
}

func TestRouter_BadIDs(t *testing.T) {
	router := newRouter(t, nil, nil)
	authz := token(t, auth.RoleAdmin)

	for _, path := range []string{
		"/api/v1/budget-heads/nope",
		"/api/v1/proposals/nope",
		"/api/v1/proposals/nope/project",
		"/api/v1/locations/panchayats/nope/villages",
	} {
		t.Run(path, func(t *testing.T) {
			rec := do(router, http.MethodGet, path, authz, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRouter_LocationImportRequiresFile(t *testing.T) {
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", token(t, auth.RoleAdmin))

	rec := httptest.NewRecorder()
	newRouter(t, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
