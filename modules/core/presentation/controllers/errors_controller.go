package controllers

import (
	"net/http"

	"github.com/iota-uz/tenantgate/pkg/httpapi"
)

func requestMeta(w http.ResponseWriter, r *http.Request) map[string]string {
	meta := map[string]string{"path": r.URL.Path}
	if requestID := w.Header().Get("X-Request-Id"); requestID != "" {
		meta["request_id"] = requestID
	}
	return meta
}

func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, httpapi.CodeNotFound, "not found", requestMeta(w, r))
	}
}

func MethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", requestMeta(w, r))
	}
}
