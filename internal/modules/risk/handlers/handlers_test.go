package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pragmas/internal/auth"
	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/modules/risk"
	"github.com/aristath/pragmas/internal/tools"
	"github.com/aristath/pragmas/internal/tools/analytics"
)

func newRouter(t *testing.T) http.Handler {
	registry, err := analytics.NewRegistry()
	require.NoError(t, err)
	executor := tools.NewExecutor(registry, nil, zerolog.Nop())

	r := chi.NewRouter()
	NewHandler(risk.NewRiskService(executor, zerolog.Nop()), zerolog.Nop()).RegisterRoutes(r)
	return r
}

func post(t *testing.T, h http.Handler, body string, caller *domain.Caller) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/risk", strings.NewReader(body))
	if caller != nil {
		req = req.WithContext(auth.WithCaller(req.Context(), caller))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleRun_StressTest(t *testing.T) {
	caller := &domain.Caller{ID: "u1", Role: domain.RoleUser}
	body := `{"action":"stressTest","input":{"positions":[
		{"symbol":"NVDA","sector":"Semis","marketValue":1000},
		{"symbol":"AAPL","sector":"Tech","marketValue":500}],
		"scenario":{"sector":"semis","shockPct":-0.1}}}`

	rec := post(t, newRouter(t), body, caller)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result analytics.StressTestResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 1500, resp.Result.TotalBefore, 1e-9)
	assert.InDelta(t, 1400, resp.Result.TotalAfter, 1e-9)
	assert.InDelta(t, -100, resp.Result.PnL, 1e-9)
}

func TestHandleRun_Errors(t *testing.T) {
	caller := &domain.Caller{ID: "u1", Role: domain.RoleUser}
	h := newRouter(t)

	assert.Equal(t, http.StatusUnauthorized, post(t, h, `{"action":"stressTest","input":{}}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, `{"action":"explode"}`, caller).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, `{"action":"zScoreAnomaly","input":{"returns":[0.1]}}`, caller).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, `not json`, caller).Code)
}
