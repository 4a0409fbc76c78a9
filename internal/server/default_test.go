package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/tenantgate/internal/server"
	"github.com/iota-uz/tenantgate/internal/testutil/memory"
	"github.com/iota-uz/tenantgate/pkg/application"
	"github.com/iota-uz/tenantgate/pkg/configuration"
	"github.com/iota-uz/tenantgate/pkg/httpapi"
	"github.com/iota-uz/tenantgate/pkg/logging"
	"github.com/iota-uz/tenantgate/pkg/metrics"
)

func newHandler(t *testing.T, conf *configuration.Configuration) http.Handler {
	t.Helper()
	logger := logging.ConsoleLogger(logrus.ErrorLevel)
	app := application.New(&application.ApplicationOptions{
		Pool:   memory.NewPool(),
		Logger: logger,
	})
	app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))

	srv, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
	})
	require.NoError(t, err)
	return srv.Handler()
}

func baseConfig() *configuration.Configuration {
	return &configuration.Configuration{
		GoAppEnvironment: "development",
		RequestIDHeader:  "X-Request-ID",
		RealIPHeader:     "X-Real-IP",
		Prometheus:       configuration.PrometheusOptions{Path: metrics.DefaultPath},
	}
}

func TestDefault_UnknownRouteRendersEnvelope(t *testing.T) {
	h := newHandler(t, baseConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), httpapi.CodeNotFound)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestDefault_RequestIDIsEchoed(t *testing.T) {
	h := newHandler(t, baseConfig())

	req := httptest.NewRequest(http.MethodGet, metrics.DefaultPath, nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
}

func TestDefault_OpsGuardHidesMetricsInProduction(t *testing.T) {
	conf := baseConfig()
	conf.GoAppEnvironment = configuration.Production
	conf.OpsGuard = configuration.OpsGuardOptions{Enabled: true, CIDRs: "10.0.0.0/8", Token: "s3cret"}
	h := newHandler(t, conf)

	call := func(remote, token string) int {
		req := httptest.NewRequest(http.MethodGet, metrics.DefaultPath, nil)
		req.RemoteAddr = remote
		if token != "" {
			req.Header.Set("X-Ops-Token", token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNotFound, call("203.0.113.5:4000", ""))
	assert.Equal(t, http.StatusNotFound, call("203.0.113.5:4000", "wrong"))
	assert.Equal(t, http.StatusOK, call("203.0.113.5:4000", "s3cret"))
	assert.Equal(t, http.StatusOK, call("10.1.2.3:4000", ""))
}

func TestDefault_RateLimitApplies(t *testing.T) {
	conf := baseConfig()
	conf.RateLimit = configuration.RateLimitOptions{Enabled: true, GlobalRPS: 1, Storage: "memory"}
	h := newHandler(t, conf)

	call := func() int {
		req := httptest.NewRequest(http.MethodGet, metrics.DefaultPath, nil)
		req.RemoteAddr = "198.51.100.7:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, call())
	assert.Equal(t, http.StatusTooManyRequests, call())
}
