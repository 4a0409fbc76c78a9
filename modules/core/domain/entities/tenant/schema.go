package tenant

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidSchemaName = errors.New("invalid isolation schema name")

var schemaNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// SchemaNameFor derives the isolation schema of a tenant from its id.
func SchemaNameFor(id uuid.UUID) string {
	return "tenant_" + strings.ReplaceAll(id.String(), "-", "")
}

func ValidateSchemaName(name string) error {
	if !schemaNamePattern.MatchString(name) {
		return ErrInvalidSchemaName
	}
	switch {
	case name == "public", name == "platform", name == "information_schema":
		return ErrInvalidSchemaName
	case strings.HasPrefix(name, "pg_"):
		return ErrInvalidSchemaName
	}
	return nil
}
