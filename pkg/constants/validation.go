package constants

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var Validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationErrors flattens a validator result into field -> failed tag.
func ValidationErrors(err error) (map[string]string, bool) {
	if err == nil {
		return map[string]string{}, true
	}
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out, false
	}
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out, false
}
