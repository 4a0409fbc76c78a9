package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/iota-uz/tenantgate/pkg/serrors"
)

const (
	CodeInternal    = "internal_error"
	CodeRateLimited = "rate_limited"
	CodeNotFound    = "not_found"
	CodeBadRequest  = "invalid_request"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
	*serrors.Remedy
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteServiceError renders err as an ErrorEnvelope. Errors that are not
// *serrors.BaseError are reported as a generic internal error; their text
// never reaches the client.
func WriteServiceError(w http.ResponseWriter, err error) error {
	meta := requestMeta(w)
	be, ok := serrors.As(err)
	if !ok {
		return WriteError(w, http.StatusInternalServerError, CodeInternal, "internal server error", meta)
	}
	env := &ErrorEnvelope{
		Code:    be.Code,
		Message: be.Message,
		Meta:    meta,
	}
	if be.Remedy != (serrors.Remedy{}) {
		remedy := be.Remedy
		env.Remedy = &remedy
	}
	return WriteJSON(w, be.Status, env)
}

func requestMeta(w http.ResponseWriter) map[string]string {
	if w == nil {
		return nil
	}
	if id := w.Header().Get("X-Request-Id"); id != "" {
		return map[string]string{"request_id": id}
	}
	return nil
}
