// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/agentdesk/internal/api"
	"github.com/taibuivan/agentdesk/internal/org"
	"github.com/taibuivan/agentdesk/internal/platform/config"
	"github.com/taibuivan/agentdesk/internal/platform/metrics"
	"github.com/taibuivan/agentdesk/internal/platform/middleware"
	"github.com/taibuivan/agentdesk/internal/platform/sec"
	"github.com/taibuivan/agentdesk/internal/users/auth"
	"github.com/taibuivan/agentdesk/internal/web"
	"github.com/taibuivan/agentdesk/internal/workspace/activitylog"
	"github.com/taibuivan/agentdesk/internal/workspace/assistant"
	"github.com/taibuivan/agentdesk/internal/workspace/knowledge"
	"github.com/taibuivan/agentdesk/internal/workspace/tool"
)

type anonymous struct{}

func (anonymous) Resolve(context.Context, http.Header) (*sec.Identity, error) { return nil, nil }

func (anonymous) LookupMembership(context.Context, string, string) (*sec.Membership, error) {
	return nil, nil
}

func newTestServer(t *testing.T, deps api.HealthDependencies) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		ServerPort:          "0",
		Environment:         "test",
		SessionCookieName:   "agentdesk.session_token",
		PublicRoutePrefixes: []string{"/login", "/signup"},
		AuthPages:           []string{"/login", "/signup"},
		LoginPath:           "/login",
		LandingPath:         "/dashboard",
	}

	guard := middleware.NewGuard(anonymous{}, anonymous{})
	instruments := metrics.New()
	liveness, readiness := api.NewHealthHandlers(deps, logger)

	server := api.NewServer(ctx, cfg, logger, api.Handlers{
		Liveness:      liveness,
		Readiness:     readiness,
		Metrics:       instruments.Handler(),
		Instrument:    instruments.Middleware,
		Guard:         guard,
		Auth:          auth.NewHandler(nil, auth.CookieSettings{Name: cfg.SessionCookieName}),
		Organizations: org.NewHandler(nil, guard),
		Assistants:    assistant.NewHandler(nil, guard),
		Knowledge:     knowledge.NewHandler(nil, guard),
		Tools:         tool.NewHandler(nil, guard),
		Logs:          activitylog.NewHandler(nil),
		Pages:         web.NewSPA(fstest.MapFS{"index.html": {Data: []byte("<html>app</html>")}}),
	})
	return server.Handler()
}

func TestServer_Routing(t *testing.T) {
	router := newTestServer(t, api.HealthDependencies{})

	tests := []struct {
		name     string
		target   string
		cookie   bool
		status   int
		location string
	}{
		{"liveness", "/health", false, http.StatusOK, ""},
		{"metrics", "/metrics", false, http.StatusOK, ""},
		{"guarded api", "/api/v1/assistants?orgId=0190c7f4-5b1e-7a42-9a51-4f1d2c3b4a59", false, http.StatusUnauthorized, ""},
		{"guarded api without org", "/api/v1/assistants", false, http.StatusBadRequest, ""},
		{"guarded logs", "/api/v1/logs?orgId=0190c7f4-5b1e-7a42-9a51-4f1d2c3b4a59", false, http.StatusUnauthorized, ""},
		{"identity api", "/api/v1/orgs", false, http.StatusUnauthorized, ""},
		{"unknown api", "/api/v1/nothing", false, http.StatusNotFound, ""},
		{"anonymous page", "/dashboard", false, http.StatusTemporaryRedirect, "/login?callbackUrl=%2Fdashboard"},
		{"login page", "/login", false, http.StatusOK, ""},
		{"signed-in login page", "/login", true, http.StatusTemporaryRedirect, "/dashboard"},
		{"signed-in page", "/dashboard", true, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie {
				request.AddCookie(&http.Cookie{Name: "agentdesk.session_token", Value: "opaque"})
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code, recorder.Body.String())
			if tt.location != "" {
				assert.Equal(t, tt.location, recorder.Header().Get("Location"))
			}
		})
	}
}

func TestServer_Readiness(t *testing.T) {
	healthy := func(context.Context) error { return nil }
	broken := func(context.Context) error { return errors.New("dial tcp: refused") }

	t.Run("ready", func(t *testing.T) {
		router := newTestServer(t, api.HealthDependencies{CheckDatabase: healthy, CheckCache: healthy})
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"status":"ready"`)
	})

	t.Run("degraded", func(t *testing.T) {
		router := newTestServer(t, api.HealthDependencies{CheckDatabase: healthy, CheckCache: broken})
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

		require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"status":"degraded"`)
		assert.Contains(t, recorder.Body.String(), `"name":"redis","ok":false`)
	})

	t.Run("postgres only", func(t *testing.T) {
		router := newTestServer(t, api.HealthDependencies{CheckDatabase: healthy})
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.NotContains(t, recorder.Body.String(), "redis")
	})
}
