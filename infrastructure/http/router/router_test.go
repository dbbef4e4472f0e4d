package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/state"
	"github.com/gudson/kpi/application/usecase/audit"
	"github.com/gudson/kpi/application/usecase/auth"
	"github.com/gudson/kpi/application/usecase/authorization"
	"github.com/gudson/kpi/application/usecase/export"
	"github.com/gudson/kpi/application/usecase/records"
	"github.com/gudson/kpi/application/usecase/reporting"
	"github.com/gudson/kpi/application/usecase/user_management"
	blobfs "github.com/gudson/kpi/infrastructure/adapter/blob/fs"
	"github.com/gudson/kpi/infrastructure/adapter/csvfile"
	"github.com/gudson/kpi/infrastructure/adapter/jsonfile"
	"github.com/gudson/kpi/infrastructure/http/handler"
	"github.com/gudson/kpi/infrastructure/http/middleware"
	"github.com/gudson/kpi/infrastructure/service/jwt"
	"github.com/gudson/kpi/infrastructure/service/logger"
	"github.com/gudson/kpi/infrastructure/service/metrics"
	"github.com/gudson/kpi/infrastructure/service/password"
	"github.com/gudson/kpi/infrastructure/service/ratelimit"
	"github.com/gudson/kpi/infrastructure/service/validator"
)

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	log := logger.NewNopLogger()

	snapshots, err := csvfile.NewStore(dir)
	require.NoError(t, err)
	store, err := state.Open(ctx, snapshots, log)
	require.NoError(t, err)

	gate := authorization.NewGate(log)
	credentials := jsonfile.NewCredentialStore(filepath.Join(dir, jsonfile.DefaultFile))
	passwords := password.NewBcryptPasswordService(4)
	users := user_management.NewUserManagementUseCase(credentials, passwords, gate, log)
	require.NoError(t, users.CreateUser(ctx, inbound.CreateUserRequest{
		Username: "admin", Password: "admin123", FullName: "Administrateur", Role: "Admin",
		Permissions: []string{"lecture", "ecriture", "gestion_utilisateurs"},
	}))
	require.NoError(t, users.CreateUser(ctx, inbound.CreateUserRequest{
		Username: "consultant1", Password: "consult123", FullName: "Paul Durand", Role: "Consultant",
		Permissions: []string{"lecture"},
	}))

	tokens, err := jwt.NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)
	authUC := auth.NewAuthUseCase(credentials, passwords, tokens, ratelimit.NewNoopRateLimitService(),
		auth.NewSessionRegistry(), nil, log, auth.LoginPolicy{})

	blobs, err := blobfs.New(filepath.Join(dir, "published"))
	require.NoError(t, err)
	recorder := metrics.NewRecorder()
	deps := records.Dependencies{Store: store, Gate: gate, Validator: validator.New(), Metrics: recorder, Logger: log}

	h := New(Handlers{
		Auth:      handler.NewAuthHandler(authUC),
		Suppliers: handler.NewSupplierHandler(records.NewSupplierUseCase(deps)),
		Buyers:    handler.NewBuyerHandler(records.NewBuyerUseCase(deps)),
		Orders:    handler.NewOrderHandler(records.NewOrderUseCase(deps)),
		Audit:     handler.NewAuditHandler(audit.NewAuditUseCase(store, gate)),
		Reports:   handler.NewReportHandler(reporting.NewReportingUseCase(store, gate, log)),
		Exports:   handler.NewExportHandler(export.NewExportUseCase(store, gate, csvfile.Encoder{}, blobs, "exports", log)),
		Users:     handler.NewUserManagementHandler(users),
	}, Options{
		Auth:                 middleware.NewAuthMiddleware(authUC),
		RateLimit:            middleware.NewRateLimitMiddleware(ratelimit.NewNoopRateLimitService(), log),
		Metrics:              recorder,
		MetricsHandler:       promhttp.HandlerFor(recorder.Registry(), promhttp.HandlerOpts{}),
		CORSEnabled:          true,
		CORSAllowedOrigins:   []string{"http://localhost:8501"},
		CORSAllowCredentials: true,
	})
	return &testServer{t: t, handler: h}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) apiResponse {
	t.Helper()
	var res apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	if data != nil {
		require.NoError(t, json.Unmarshal(res.Data, data))
	}
	return res
}

func (s *testServer) login(username, pass string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": username, "password": pass})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Token struct {
			AccessToken string `json:"access_token"`
		} `json:"token"`
	}
	decode(s.t, rec, &out)
	require.NotEmpty(s.t, out.Token.AccessToken)
	return out.Token.AccessToken
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.CorrelationIDHeader))
}

func TestRouter_LoginErrors(t *testing.T) {
	srv := newTestServer(t)

	var data struct{ Code string }
	rec := srv.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	decode(t, rec, &data)
	assert.Equal(t, "AUTH_1002", data.Code)

	rec = srv.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "ghost", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	decode(t, rec, &data)
	assert.Equal(t, "AUTH_1001", data.Code)
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodGet, "/v1/suppliers", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodGet, "/v1/suppliers", "garbage", nil).Code)
}

func TestRouter_SupplierLifecycle(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login("admin", "admin123")
	consultant := srv.login("consultant1", "consult123")

	rec := srv.do(http.MethodPost, "/v1/suppliers", admin, map[string]interface{}{
		"name": "Acme", "country": "France", "quality_score": 8.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct{ ID string }
	decode(t, rec, &created)
	assert.Equal(t, "F001", created.ID)

	rec = srv.do(http.MethodPost, "/v1/suppliers", consultant, map[string]interface{}{"name": "Other"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(http.MethodPut, "/v1/suppliers/F001", admin, map[string]interface{}{"status": "Actif"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var list []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	rec = srv.do(http.MethodGet, "/v1/suppliers?country=France", consultant, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Actif", list[0].Status)

	rec = srv.do(http.MethodDelete, "/v1/suppliers/F001", consultant, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var data struct{ Code string }
	rec = srv.do(http.MethodDelete, "/v1/suppliers/F001", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	decode(t, rec, &data)
	assert.Equal(t, "VALID_2002", data.Code)

	rec = srv.do(http.MethodDelete, "/v1/suppliers/F001?confirm=true", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(http.MethodGet, "/v1/suppliers/F001", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var entries []struct {
		Actor    string `json:"actor"`
		RecordID string `json:"record_id"`
	}
	rec = srv.do(http.MethodGet, "/v1/audit?actor=admin", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &entries)
	assert.Len(t, entries, 3)

	assert.Equal(t, http.StatusForbidden, srv.do(http.MethodGet, "/v1/audit", consultant, nil).Code)
}

func TestRouter_OrderFilterRejectsBadDate(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login("admin", "admin123")

	rec := srv.do(http.MethodGet, "/v1/orders?from=14/03/2024", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ReportsAndExport(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login("admin", "admin123")

	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/v1/buyers", admin, map[string]interface{}{
		"name": "Jean Dupont", "email": "jean@gudson.fr", "allocated_budget": "1000",
	}).Code)

	var dash struct {
		BuyerCount int `json:"buyer_count"`
	}
	rec := srv.do(http.MethodGet, "/v1/reports/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &dash)
	assert.Equal(t, 1, dash.BuyerCount)

	rec = srv.do(http.MethodGet, "/v1/reports/correlation?fields=quality_score,bogus", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodGet, "/v1/exports/buyers", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "acheteurs_")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "ID_Acheteur,"))

	rec = srv.do(http.MethodPost, "/v1/exports/buyers", admin, nil)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(http.MethodGet, "/v1/exports/unknown", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UsersNeverExposeHashes(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login("admin", "admin123")
	consultant := srv.login("consultant1", "consult123")

	rec := srv.do(http.MethodGet, "/v1/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "$2a$")
	assert.Contains(t, rec.Body.String(), "consultant1")

	assert.Equal(t, http.StatusForbidden, srv.do(http.MethodGet, "/v1/users", consultant, nil).Code)
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodGet, "/v1/users/ghost", admin, nil).Code)
}

func TestRouter_LogoutClosesSession(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login("admin", "admin123")

	var me struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	rec := srv.do(http.MethodGet, "/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &me)
	assert.Equal(t, "admin", me.Username)
	assert.Equal(t, "Admin", me.Role)

	assert.Equal(t, http.StatusNoContent, srv.do(http.MethodPost, "/v1/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodGet, "/v1/auth/me", token, nil).Code)
}

func TestRouter_MetricsAndCORS(t *testing.T) {
	srv := newTestServer(t)
	srv.do(http.MethodGet, "/health", "", nil)

	rec := srv.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `kpi_http_requests_total{method="GET",route="/health",status="200"}`)

	req := httptest.NewRequest(http.MethodOptions, "/v1/suppliers", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	cors := httptest.NewRecorder()
	srv.handler.ServeHTTP(cors, req)
	assert.Equal(t, http.StatusNoContent, cors.Code)
	assert.Equal(t, "http://localhost:8501", cors.Header().Get("Access-Control-Allow-Origin"))
}
