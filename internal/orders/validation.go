package orders

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/farmstock/farmstock/internal/shared"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateCreateRequest checks structural validity of a create payload.
// Stock-level validation happens later against the ledger.
func ValidateCreateRequest(req CreateOrderRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrValidation, describeFieldErrors(err))
	}
	if strings.TrimSpace(req.Customer.Name) == "" {
		return fmt.Errorf("%w: customer name is required", shared.ErrValidation)
	}
	if strings.TrimSpace(req.Customer.Phone) == "" && strings.TrimSpace(req.Customer.Email) == "" {
		return fmt.Errorf("%w: customer phone or email is required", shared.ErrValidation)
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
		case "required", "min":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "gt":
			parts = append(parts, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		case "gte":
			parts = append(parts, fmt.Sprintf("%s must not be negative", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}
