package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pragmas/internal/auth"
	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/modules/alerts"
	testingpkg "github.com/aristath/pragmas/internal/testing"
)

func TestAlertRoutes(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "ledger")
	defer cleanup()
	testingpkg.SeedAlert(t, db, "a1", testingpkg.OwnerID, "", "AAPL", "", "AAPL alert", "m", time.Now())
	testingpkg.SeedAlert(t, db, "a2", testingpkg.OtherUserID, "", "AAPL", "", "other", "m", time.Now())

	service := alerts.NewAlertService(alerts.NewAlertRepository(db.Conn(), zerolog.Nop()), zerolog.Nop())
	r := chi.NewRouter()
	NewHandler(service, zerolog.Nop()).RegisterRoutes(r)

	owner := &domain.Caller{ID: testingpkg.OwnerID, Role: domain.RoleUser}
	do := func(method, path, body string, caller *domain.Caller) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if caller != nil {
			req = req.WithContext(auth.WithCaller(req.Context(), caller))
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, "/alerts", "", owner)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Alerts []alerts.Alert `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, "a1", resp.Alerts[0].ID)

	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/alerts/read", `{"alert_id":"a1"}`, owner).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodPost, "/alerts/read", `{"alert_id":"a2"}`, owner).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/alerts/read", `{}`, owner).Code)
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/alerts", "", nil).Code)
}
