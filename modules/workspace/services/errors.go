package services

import (
	"net/http"

	"github.com/iota-uz/tenantgate/pkg/serrors"
)

var (
	ErrInvalidInput        = serrors.NewError("invalid_input", "Invalid input", http.StatusBadRequest)
	ErrProductNotFound     = serrors.NewError("product_not_found", "Product not found", http.StatusNotFound)
	ErrDuplicateSKU        = serrors.NewError("duplicate_sku", "A product with this SKU already exists", http.StatusConflict)
	ErrIntegrationNotFound = serrors.NewError("integration_not_found", "Integration not found", http.StatusNotFound)
	ErrIntegrationExists   = serrors.NewError("integration_exists", "This integration is already configured", http.StatusConflict)
)

func invalidInput(errs map[string]string) error {
	return ErrInvalidInput.WithMessage(serrors.FormatFields(errs))
}
