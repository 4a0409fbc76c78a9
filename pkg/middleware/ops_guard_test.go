package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iota-uz/tenantgate/pkg/middleware"
)

func TestOpsGuard(t *testing.T) {
	guard := middleware.OpsGuard(middleware.OpsGuardOptions{
		Paths:        []string{"/debug/prometheus"},
		CIDRs:        "10.0.0.0/8, 192.168.1.0/24",
		Token:        "s3cret",
		RealIPHeader: "X-Real-IP",
	})
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		path   string
		remote string
		header map[string]string
		want   int
	}{
		{name: "non ops path", path: "/api/products", remote: "203.0.113.9:5000", want: http.StatusOK},
		{name: "outside allowlist", path: "/debug/prometheus", remote: "203.0.113.9:5000", want: http.StatusNotFound},
		{name: "inside allowlist", path: "/debug/prometheus", remote: "10.1.2.3:5000", want: http.StatusOK},
		{name: "forwarded ip", path: "/debug/prometheus", remote: "203.0.113.9:5000", header: map[string]string{"X-Real-IP": "192.168.1.7, 10.9.9.9"}, want: http.StatusOK},
		{name: "token", path: "/debug/prometheus", remote: "203.0.113.9:5000", header: map[string]string{"X-Ops-Token": "s3cret"}, want: http.StatusOK},
		{name: "wrong token", path: "/debug/prometheus", remote: "203.0.113.9:5000", header: map[string]string{"X-Ops-Token": "guess"}, want: http.StatusNotFound},
		{name: "sub path", path: "/debug/prometheus/extra", remote: "203.0.113.9:5000", want: http.StatusNotFound},
		{name: "prefix lookalike", path: "/debug/prometheusx", remote: "203.0.113.9:5000", want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
