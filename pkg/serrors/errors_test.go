package serrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_IsMatchesByCode(t *testing.T) {
	sentinel := NewError("feature_not_available", "feature not available", http.StatusForbidden)
	derived := sentinel.WithRemedy(Remedy{CurrentTier: "starter"}).WithCause(errors.New("boom"))

	wrapped := fmt.Errorf("guard: %w", derived)
	require.ErrorIs(t, wrapped, sentinel)
	assert.NotErrorIs(t, wrapped, NewError("other", "x", http.StatusForbidden))

	be, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "starter", be.Remedy.CurrentTier)
	assert.Equal(t, http.StatusForbidden, be.Status)
	assert.Empty(t, sentinel.Remedy.CurrentTier, "sentinel must not be mutated")
}

func TestNewError_DefaultsStatus(t *testing.T) {
	err := NewError("internal_error", "internal error", 0)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "internal_error: internal error", err.Error())
}
