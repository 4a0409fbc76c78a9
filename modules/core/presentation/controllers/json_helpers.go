package controllers

import (
	"net/http"

	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/httpapi"
	"github.com/iota-uz/tenantgate/pkg/serrors"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := httpapi.WriteJSON(w, status, payload); err != nil {
		composables.UseLoggerOrDefault(r.Context()).WithError(err).Error("failed to write response")
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := composables.UseLoggerOrDefault(r.Context())
	if _, ok := serrors.As(err); !ok {
		logger.WithError(err).Error("request failed")
	}
	if werr := httpapi.WriteServiceError(w, err); werr != nil {
		logger.WithError(werr).Error("failed to write error response")
	}
}
