package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/httpapi"
	"github.com/iota-uz/tenantgate/pkg/serrors"
)

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeBadRequest, "request body is not valid JSON", nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeBadRequest, "invalid id", nil)
		return 0, false
	}
	return uint(id), true
}

func respond(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := httpapi.WriteJSON(w, status, payload); err != nil {
		composables.UseLoggerOrDefault(r.Context()).WithError(err).Error("failed to write response")
	}
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	logger := composables.UseLoggerOrDefault(r.Context())
	if _, ok := serrors.As(err); !ok {
		logger.WithError(err).Error("workspace request failed")
	}
	if werr := httpapi.WriteServiceError(w, err); werr != nil {
		logger.WithError(werr).Error("failed to write error response")
	}
}
