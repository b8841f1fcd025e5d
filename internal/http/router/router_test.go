package router

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/lostfound-bot/internal/config"
	"github.com/ignatzorin/lostfound-bot/internal/http/handlers"
	"github.com/ignatzorin/lostfound-bot/internal/models"
	"github.com/ignatzorin/lostfound-bot/internal/moderation"
	"github.com/ignatzorin/lostfound-bot/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-bot/internal/service"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }
func (p fakePinger) Stats() sql.DBStats                { return sql.DBStats{MaxOpenConnections: 1} }

// fakeModeration повторяет семантику координатора на уровне результатов.
type fakeModeration struct {
	reports   map[int64]*models.Report
	decisions []moderation.Decision
}

func (f *fakeModeration) ListPending(context.Context) ([]models.Report, error) {
	var out []models.Report
	for id := int64(1); id <= int64(len(f.reports)); id++ {
		if r, ok := f.reports[id]; ok && r.Status == models.ReportStatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeModeration) Get(_ context.Context, id int64) (*models.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, apperror.New(apperror.ErrCodeNotFound, fmt.Sprintf("заявление %d не найдено", id))
	}
	return r, nil
}

func (f *fakeModeration) Decide(ctx context.Context, d moderation.Decision) (moderation.Outcome, error) {
	r, err := f.Get(ctx, d.ReportID)
	if err != nil {
		return moderation.Outcome{}, err
	}
	if r.Status.IsTerminal() {
		return moderation.Outcome{Result: moderation.ResultAlreadyDecided, Status: r.Status, Report: r}, nil
	}
	status, _ := d.Verb.Status()
	r.Status = status
	r.DecidedBy = &d.Moderator
	f.decisions = append(f.decisions, d)
	return moderation.Outcome{Result: moderation.ResultApplied, Status: status, Report: r}, nil
}

type testAPI struct {
	engine *gin.Engine
	mod    *fakeModeration
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:             "test",
		AllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitLimit:  100,
		RateLimitPeriod: time.Minute,
	}

	tokens := service.NewTokenManager("router-test-secret-router-test-secret", time.Hour)
	auth := service.NewAuthService("admin", string(hash), tokens)
	mod := &fakeModeration{reports: map[int64]*models.Report{
		1: {ID: 1, UserID: 42, Kind: models.ReportKindLost, Description: "black wallet", Location: "library, 3pm", Contact: "+1000000", Status: models.ReportStatusPending},
		2: {ID: 2, UserID: 43, Kind: models.ReportKindFound, Description: "keys", Location: "gym", Contact: "@a", Status: models.ReportStatusRejected},
	}}

	engine := SetupRouter(cfg,
		handlers.NewHealthHandler(fakePinger{}, func() int { return 3 }),
		handlers.NewAuthHandler(auth),
		handlers.NewReportHandler(mod),
		nil,
		auth,
	)

	api := &testAPI{engine: engine, mod: mod}
	w := api.do(t, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var pair service.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	api.token = pair.AccessToken
	return api
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp handlers.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	require.NotNil(t, resp.ActiveSessions)
	assert.Equal(t, 3, *resp.ActiveSessions)
}

func TestRouter_HealthUnhealthyDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := SetupRouter(&config.Config{}, handlers.NewHealthHandler(fakePinger{err: errors.New("refused")}, nil), nil, nil, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// Без настроенного входа API не публикуется.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/reports/pending", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_LoginWrongPassword(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""

	w := api.do(t, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/auth/login", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""

	w := api.do(t, http.MethodGet, "/api/reports/pending", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	api.token = "garbage"
	w = api.do(t, http.MethodPost, "/api/reports/1/decision", `{"action":"approve"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, api.mod.decisions)
}

func TestRouter_ListPending(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/reports/pending", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Reports []models.Report `json:"reports"`
		Total   int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "black wallet", resp.Reports[0].Description)
}

func TestRouter_GetReport(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/reports/2", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/reports/999999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")

	w = api.do(t, http.MethodGet, "/api/reports/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_DecisionOutcomes(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/reports/1/decision", `{"action":"approve"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.DecisionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, moderation.ResultApplied, resp.Result)
	assert.Equal(t, models.ReportStatusApproved, resp.Status)

	require.Len(t, api.mod.decisions, 1)
	assert.Equal(t, "admin", api.mod.decisions[0].Moderator)
	assert.True(t, api.mod.decisions[0].Message.IsZero())

	w = api.do(t, http.MethodPost, "/api/reports/1/decision", `{"action":"reject"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, moderation.ResultAlreadyDecided, resp.Result)
	assert.Equal(t, models.ReportStatusApproved, resp.Status)

	w = api.do(t, http.MethodPost, "/api/reports/999999/decision", `{"action":"approve"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodPost, "/api/reports/1/decision", `{"action":"delete"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	req, _ := http.NewRequest(http.MethodOptions, "/api/reports/pending", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_LoginRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{RateLimitLimit: 2, RateLimitPeriod: time.Minute}
	auth := service.NewAuthService("admin", "", service.NewTokenManager("x", time.Hour))
	engine := SetupRouter(cfg, handlers.NewHealthHandler(fakePinger{}, nil), handlers.NewAuthHandler(auth), handlers.NewReportHandler(&fakeModeration{}), nil, auth)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"a","password":"b"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}
