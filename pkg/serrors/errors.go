package serrors

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Remedy carries the machine-readable data a client needs to act on a denial.
type Remedy struct {
	Hint         string `json:"hint,omitempty"`
	UpgradeURL   string `json:"upgradeUrl,omitempty"`
	CurrentTier  string `json:"currentTier,omitempty"`
	RequiredTier string `json:"requiredTier,omitempty"`
	Feature      string `json:"feature,omitempty"`
	RequiredRole string `json:"requiredRole,omitempty"`
	EntityType   string `json:"entityType,omitempty"`
	Limit        *int   `json:"limit,omitempty"`
	CurrentCount *int   `json:"currentCount,omitempty"`
	Retryable    bool   `json:"retryable,omitempty"`
}

type BaseError struct {
	Code    string
	Message string
	Status  int
	Remedy  Remedy
	cause   error
}

func NewError(code, message string, status int) *BaseError {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &BaseError{Code: code, Message: message, Status: status}
}

func (e *BaseError) Error() string {
	if e.cause == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
}

func (e *BaseError) Unwrap() error {
	return e.cause
}

// Is matches any BaseError carrying the same code, so copies made by
// WithCause and WithRemedy still satisfy errors.Is against the sentinel.
func (e *BaseError) Is(target error) bool {
	var other *BaseError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

func (e *BaseError) WithCause(cause error) *BaseError {
	c := *e
	c.cause = cause
	return &c
}

func (e *BaseError) WithRemedy(r Remedy) *BaseError {
	c := *e
	c.Remedy = r
	return &c
}

func (e *BaseError) WithMessage(message string) *BaseError {
	c := *e
	c.Message = message
	return &c
}

// As returns the outermost BaseError in err's chain.
func As(err error) (*BaseError, bool) {
	var be *BaseError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func IntPtr(v int) *int {
	return &v
}

// FormatFields renders validation failures as "field: tag" pairs in field order.
func FormatFields(errs map[string]string) string {
	parts := make([]string, 0, len(errs))
	for field, tag := range errs {
		parts = append(parts, field+": "+tag)
	}
	slices.Sort(parts)
	return strings.Join(parts, "; ")
}
