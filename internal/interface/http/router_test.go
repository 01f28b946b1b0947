package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/heliowatt/heliowatt/internal/domain/auth"
	"github.com/heliowatt/heliowatt/internal/domain/export"
	"github.com/heliowatt/heliowatt/internal/domain/location"
	"github.com/heliowatt/heliowatt/internal/domain/session"
	"github.com/heliowatt/heliowatt/internal/domain/simulation"
	"github.com/heliowatt/heliowatt/internal/infra/config"
	apperrors "github.com/heliowatt/heliowatt/pkg/errors"
)

func TestRouter_Healthz(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/healthz", "", newRouterUnderTest(t, routerStubs{}))
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

func TestRouter_RegisterSuccess(t *testing.T) {
	created := auth.UserView{ID: 1, Email: "ray@example.com", DisplayName: "Rooftop Ray", CreatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	stubs := routerStubs{auth: &stubAuthService{
		registerFn: func(ctx context.Context, req auth.RegisterRequest) (auth.UserView, error) {
			require.Equal(t, "ray@example.com", req.Email)
			return created, nil
		},
	}}

	recorder := performRequest(http.MethodPost, "/api/v1/auth/register", `{"email":"ray@example.com","password":"hunter22","displayName":"Rooftop Ray"}`, newRouterUnderTest(t, stubs))
	require.Equal(t, http.StatusCreated, recorder.Code)

	var got auth.UserView
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, created, got)
}

func TestRouter_LoginInvalidCredentials(t *testing.T) {
	stubs := routerStubs{auth: &stubAuthService{
		loginFn: func(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
			return auth.LoginResponse{}, apperrors.Wrap("invalid_credentials", "invalid email or password", nil)
		},
	}}

	recorder := performRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"ray@example.com","password":"wrong"}`, newRouterUnderTest(t, stubs))
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_credentials", errBody["error"]["code"])
}

func TestRouter_GoogleURLNotConfigured(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/api/v1/auth/google/url", "", newRouterUnderTest(t, routerStubs{}))
	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "auth_not_configured", errBody["error"]["code"])
}

func TestRouter_ProtectedRequiresToken(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/v1/simulations", `{"location":{"address":"Berlin"}}`, newRouterUnderTest(t, routerStubs{}))
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "unauthorized", errBody["error"]["code"])
}

func TestRouter_ResolveLocationSuccess(t *testing.T) {
	place := location.Place{Latitude: 52.52, Longitude: 13.405, Label: "Berlin, Deutschland"}
	stubs := routerStubs{location: &stubLocationService{
		resolveFn: func(ctx context.Context, q location.Query) (location.Place, error) {
			require.Equal(t, "Berlin", q.Address)
			return place, nil
		},
	}}

	recorder := performAuthed(http.MethodPost, "/api/v1/geocode", `{"address":"Berlin"}`, newRouterUnderTest(t, stubs))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got location.Place
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, place, got)
}

func TestRouter_ResolveLocationRemembersInputs(t *testing.T) {
	saved := session.Record{
		UserID:   7,
		Location: location.Query{Address: "Munich"},
		Params:   simulation.SystemConfig{CapacityKW: 9.5},
	}
	remembered := 0
	stubs := routerStubs{
		location: &stubLocationService{
			resolveFn: func(ctx context.Context, q location.Query) (location.Place, error) {
				return location.Place{Latitude: 52.52, Longitude: 13.405}, nil
			},
		},
		session: &stubSessionService{
			inputsFn: func(ctx context.Context, userID int64) (session.Record, bool, error) {
				return saved, true, nil
			},
			rememberFn: func(ctx context.Context, userID int64, q location.Query, cfg simulation.SystemConfig) error {
				remembered++
				require.Equal(t, int64(7), userID)
				require.Equal(t, "Berlin", q.Address)
				require.Equal(t, 9.5, cfg.CapacityKW)
				return nil
			},
		},
	}

	recorder := performAuthed(http.MethodPost, "/api/v1/geocode", `{"address":"Berlin"}`, newRouterUnderTest(t, stubs))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, 1, remembered)
}

func TestRouter_ResolveLocationNotFound(t *testing.T) {
	stubs := routerStubs{location: &stubLocationService{
		resolveFn: func(ctx context.Context, q location.Query) (location.Place, error) {
			return location.Place{}, apperrors.Wrap("address_not_found", "no matches for address", nil)
		},
	}}

	recorder := performAuthed(http.MethodPost, "/api/v1/geocode", `{"address":"nowhere at all"}`, newRouterUnderTest(t, stubs))
	require.Equal(t, http.StatusNotFound, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "address_not_found", errBody["error"]["code"])
}

func TestRouter_ResolveLocationInvalidJSON(t *testing.T) {
	recorder := performAuthed(http.MethodPost, "/api/v1/geocode", `{"address":123}`, newRouterUnderTest(t, routerStubs{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
}

func TestRouter_RunSimulationPropagatesUser(t *testing.T) {
	report := simulation.Report{
		Location:       location.Place{Latitude: 40.01, Longitude: -105.25},
		Params:         simulation.DefaultSystemConfig(),
		AnnualACKWh:    8123.45,
		SpecificYield:  1624.69,
		CapacityFactor: 18.5,
	}
	stubs := routerStubs{simulation: &stubSimulationService{
		runFn: func(ctx context.Context, req simulation.RunRequest) (simulation.Report, error) {
			require.Equal(t, int64(7), req.UserID)
			require.Equal(t, "Boulder, CO", req.Location.Address)
			return report, nil
		},
	}}

	recorder := performAuthed(http.MethodPost, "/api/v1/simulations", `{"location":{"address":"Boulder, CO"}}`, newRouterUnderTest(t, stubs))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got simulation.Report
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, report.AnnualACKWh, got.AnnualACKWh)
	require.Equal(t, report.SpecificYield, got.SpecificYield)
}

func TestRouter_RunSimulationUpstreamError(t *testing.T) {
	runs := 0
	stubs := routerStubs{simulation: &stubSimulationService{
		runFn: func(ctx context.Context, req simulation.RunRequest) (simulation.Report, error) {
			runs++
			return simulation.Report{}, apperrors.Wrap("estimate_error", "API Error 503: overloaded", nil)
		},
	}}

	recorder := performAuthed(http.MethodPost, "/api/v1/simulations", `{"location":{"address":"Boulder, CO"}}`, newRouterUnderTest(t, stubs))
	require.Equal(t, http.StatusBadGateway, recorder.Code)

	// An upstream failure is terminal for the request: the pipeline must run
	// exactly once, with no replay anywhere in the server stack.
	require.Equal(t, 1, runs)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "estimate_error", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "API Error 503")
}

func TestRouter_SimulationDefaults(t *testing.T) {
	recorder := performAuthed(http.MethodGet, "/api/v1/simulations/defaults", "", newRouterUnderTest(t, routerStubs{}))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got simulation.Defaults
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, 5.0, got.Params.CapacityKW)
}

func TestRouter_SessionInputs(t *testing.T) {
	record := session.Record{
		UserID:   7,
		Location: location.Query{Address: "Berlin"},
		Params:   simulation.DefaultSystemConfig(),
	}
	stubs := routerStubs{session: &stubSessionService{
		inputsFn: func(ctx context.Context, userID int64) (session.Record, bool, error) {
			require.Equal(t, int64(7), userID)
			return record, true, nil
		},
	}}

	recorder := performAuthed(http.MethodGet, "/api/v1/session/inputs", "", newRouterUnderTest(t, stubs))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got session.Record
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "Berlin", got.Location.Address)
}

func TestRouter_SessionInputsNotFound(t *testing.T) {
	stubs := routerStubs{session: &stubSessionService{
		inputsFn: func(ctx context.Context, userID int64) (session.Record, bool, error) {
			return session.Record{}, false, nil
		},
	}}

	recorder := performAuthed(http.MethodGet, "/api/v1/session/inputs", "", newRouterUnderTest(t, stubs))
	require.Equal(t, http.StatusNotFound, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "not_found", errBody["error"]["code"])
}

func TestRouter_ExportHourlyAttachment(t *testing.T) {
	stubs := routerStubs{simulation: &stubSimulationService{
		runFn: func(ctx context.Context, req simulation.RunRequest) (simulation.Report, error) {
			return reportWithHourly(), nil
		},
	}}

	recorder := performAuthed(http.MethodPost, "/api/v1/simulations/export/hourly", `{"location":{"address":"Boulder, CO"},"params":{"timeframe":"hourly"}}`, newRouterUnderTest(t, stubs))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "text/csv", recorder.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="hourly_output.csv"`, recorder.Header().Get("Content-Disposition"))
	require.True(t, strings.HasPrefix(recorder.Body.String(), "timestamp,ac_kwh,dc_kwh"))
}

func TestRouter_ExportHourlyArchive(t *testing.T) {
	artifact := export.Artifact{Key: "exports/7/hourly-csv-20240101.csv", Size: 128, ContentType: "text/csv"}
	stubs := routerStubs{
		simulation: &stubSimulationService{
			runFn: func(ctx context.Context, req simulation.RunRequest) (simulation.Report, error) {
				return reportWithHourly(), nil
			},
		},
		export: &stubExportService{
			archiveFn: func(ctx context.Context, userID int64, kind export.Kind, data []byte) (export.Artifact, error) {
				require.Equal(t, int64(7), userID)
				require.Equal(t, export.KindHourlyCSV, kind)
				require.NotEmpty(t, data)
				return artifact, nil
			},
		},
	}

	recorder := performAuthed(http.MethodPost, "/api/v1/simulations/export/hourly?archive=1", `{"location":{"address":"Boulder, CO"},"params":{"timeframe":"hourly"}}`, newRouterUnderTest(t, stubs))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got export.Artifact
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, artifact, got)
}

func TestRouter_DownloadExportForeignKeyNotFound(t *testing.T) {
	stubs := routerStubs{export: &stubExportService{
		fetchFn: func(ctx context.Context, userID int64, key string) ([]byte, string, error) {
			// The handler forwards the caller's identity untouched; the
			// service decides the key is not theirs.
			require.Equal(t, int64(7), userID)
			require.Equal(t, "exports/9/hourly-csv-20240101.csv", key)
			return nil, "", apperrors.Wrap("export_not_found", "export not found", nil)
		},
	}}

	recorder := performAuthed(http.MethodGet, "/api/v1/exports/exports/9/hourly-csv-20240101.csv", "", newRouterUnderTest(t, stubs))
	require.Equal(t, http.StatusNotFound, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "export_not_found", errBody["error"]["code"])
}

func TestRouter_DownloadExportSuccess(t *testing.T) {
	stubs := routerStubs{export: &stubExportService{
		fetchFn: func(ctx context.Context, userID int64, key string) ([]byte, string, error) {
			require.Equal(t, int64(7), userID)
			require.Equal(t, "exports/7/hourly-csv-20240101.csv", key)
			return []byte("timestamp,ac_kwh\n"), "text/csv", nil
		},
	}}

	recorder := performAuthed(http.MethodGet, "/api/v1/exports/exports/7/hourly-csv-20240101.csv", "", newRouterUnderTest(t, stubs))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "text/csv", recorder.Header().Get("Content-Type"))
	require.Contains(t, recorder.Body.String(), "timestamp")
}

func reportWithHourly() simulation.Report {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return simulation.Report{
		Params:      simulation.DefaultSystemConfig(),
		AnnualACKWh: 12.5,
		Hourly: []simulation.HourlySample{
			{Timestamp: base, ACKWh: 0, DCKWh: 0, SpecificYield: 0},
			{Timestamp: base.Add(time.Hour), ACKWh: 1.25, DCKWh: 1.4, SpecificYield: 0.25},
		},
		HourlyCount: 2,
	}
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	return serveRequest(method, path, body, "", server)
}

func performAuthed(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	return serveRequest(method, path, body, "Bearer test-token", server)
}

func serveRequest(method, path, body, authorization string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

type routerStubs struct {
	auth       *stubAuthService
	location   *stubLocationService
	simulation *stubSimulationService
	session    *stubSessionService
	export     *stubExportService
}

func newRouterUnderTest(t *testing.T, stubs routerStubs) *http.Server {
	t.Helper()
	if stubs.auth == nil {
		stubs.auth = &stubAuthService{}
	}
	if stubs.location == nil {
		stubs.location = &stubLocationService{}
	}
	if stubs.simulation == nil {
		stubs.simulation = &stubSimulationService{}
	}
	if stubs.session == nil {
		stubs.session = &stubSessionService{}
	}
	if stubs.export == nil {
		stubs.export = &stubExportService{}
	}

	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	handler := NewHandler(cfg, stubs.auth, stubs.location, stubs.simulation, stubs.session, stubs.export, newTestLogger())
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubAuthService struct {
	registerFn      func(ctx context.Context, req auth.RegisterRequest) (auth.UserView, error)
	loginFn         func(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error)
	validateTokenFn func(ctx context.Context, token string) (auth.Claims, error)
	refreshFn       func(ctx context.Context, refreshToken string) (auth.LoginResponse, error)
	profileFn       func(ctx context.Context, userID int64) (auth.UserView, error)
	logoutFn        func(ctx context.Context, userID int64) error
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (auth.UserView, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, req)
	}
	return auth.UserView{}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, req)
	}
	return auth.LoginResponse{}, nil
}

func (s *stubAuthService) GoogleAuthURL(ctx context.Context, state, codeChallenge string) (string, error) {
	return "", apperrors.Wrap("auth_not_configured", "google sign-in is not configured", nil)
}

func (s *stubAuthService) GoogleCallback(ctx context.Context, code, codeVerifier string) (auth.LoginResponse, error) {
	return auth.LoginResponse{}, apperrors.Wrap("auth_not_configured", "google sign-in is not configured", nil)
}

func (s *stubAuthService) ValidateToken(ctx context.Context, token string) (auth.Claims, error) {
	if s.validateTokenFn != nil {
		return s.validateTokenFn(ctx, token)
	}
	return auth.Claims{UserID: 7, Email: "ray@example.com", TokenType: "access", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (auth.LoginResponse, error) {
	if s.refreshFn != nil {
		return s.refreshFn(ctx, refreshToken)
	}
	return auth.LoginResponse{}, nil
}

func (s *stubAuthService) Profile(ctx context.Context, userID int64) (auth.UserView, error) {
	if s.profileFn != nil {
		return s.profileFn(ctx, userID)
	}
	return auth.UserView{}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, userID int64) error {
	if s.logoutFn != nil {
		return s.logoutFn(ctx, userID)
	}
	return nil
}

type stubLocationService struct {
	resolveFn func(ctx context.Context, q location.Query) (location.Place, error)
}

func (s *stubLocationService) Resolve(ctx context.Context, q location.Query) (location.Place, error) {
	if s.resolveFn != nil {
		return s.resolveFn(ctx, q)
	}
	return location.Place{}, nil
}

type stubSimulationService struct {
	runFn func(ctx context.Context, req simulation.RunRequest) (simulation.Report, error)
}

func (s *stubSimulationService) Run(ctx context.Context, req simulation.RunRequest) (simulation.Report, error) {
	if s.runFn != nil {
		return s.runFn(ctx, req)
	}
	return simulation.Report{}, nil
}

func (s *stubSimulationService) Defaults() simulation.Defaults {
	return simulation.Defaults{Params: simulation.DefaultSystemConfig()}
}

type stubSessionService struct {
	rememberFn func(ctx context.Context, userID int64, q location.Query, cfg simulation.SystemConfig) error
	inputsFn   func(ctx context.Context, userID int64) (session.Record, bool, error)
	clearFn    func(ctx context.Context, userID int64) error
}

func (s *stubSessionService) Remember(ctx context.Context, userID int64, q location.Query, cfg simulation.SystemConfig) error {
	if s.rememberFn != nil {
		return s.rememberFn(ctx, userID, q, cfg)
	}
	return nil
}

func (s *stubSessionService) Inputs(ctx context.Context, userID int64) (session.Record, bool, error) {
	if s.inputsFn != nil {
		return s.inputsFn(ctx, userID)
	}
	return session.Record{}, false, nil
}

func (s *stubSessionService) Clear(ctx context.Context, userID int64) error {
	if s.clearFn != nil {
		return s.clearFn(ctx, userID)
	}
	return nil
}

type stubExportService struct {
	archiveFn func(ctx context.Context, userID int64, kind export.Kind, data []byte) (export.Artifact, error)
	fetchFn   func(ctx context.Context, userID int64, key string) ([]byte, string, error)
}

func (s *stubExportService) Archive(ctx context.Context, userID int64, kind export.Kind, data []byte) (export.Artifact, error) {
	if s.archiveFn != nil {
		return s.archiveFn(ctx, userID, kind, data)
	}
	return export.Artifact{}, nil
}

func (s *stubExportService) Fetch(ctx context.Context, userID int64, key string) ([]byte, string, error) {
	if s.fetchFn != nil {
		return s.fetchFn(ctx, userID, key)
	}
	return nil, "", apperrors.Wrap("export_not_found", "export not found", nil)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
