package exports

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/farmstock/farmstock/internal/shared"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateCreateRequest checks structural validity of a create payload.
func ValidateCreateRequest(req CreateEntryRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrValidation, describeFieldErrors(err))
	}
	if !req.Unit.Valid() {
		return fmt.Errorf("%w: unknown unit %q", shared.ErrValidation, req.Unit)
	}
	return nil
}

// ValidateUpdateRequest checks the patchable fields of an update payload.
func ValidateUpdateRequest(req UpdateEntryRequest) error {
	if req.Quantity != nil && *req.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}
	if req.ExportPrice != nil && *req.ExportPrice <= 0 {
		return fmt.Errorf("%w: export price must be positive", shared.ErrValidation)
	}
	if req.ExportCountry != nil && strings.TrimSpace(*req.ExportCountry) == "" {
		return fmt.Errorf("%w: export country must not be empty", shared.ErrValidation)
	}
	if req.Unit != nil && !req.Unit.Valid() {
		return fmt.Errorf("%w: unknown unit %q", shared.ErrValidation, *req.Unit)
	}
	return nil
}

func describeFieldErrors(err error) string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "gt":
			parts = append(parts, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}
