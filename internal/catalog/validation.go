package catalog

import (
	"fmt"
	"strings"

	"github.com/farmstock/farmstock/internal/shared"
)

func validateCreateInput(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: product name is required", shared.ErrValidation)
	}
	if !input.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", shared.ErrValidation, input.Category)
	}
	if !input.Unit.Valid() {
		return fmt.Errorf("%w: unknown unit %q", shared.ErrValidation, input.Unit)
	}
	if !input.Market.Valid() {
		return fmt.Errorf("%w: unknown market %q", shared.ErrValidation, input.Market)
	}
	if input.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", shared.ErrValidation)
	}
	if input.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", shared.ErrValidation)
	}
	if input.MinStockLevel < 0 {
		return fmt.Errorf("%w: minimum stock level must not be negative", shared.ErrValidation)
	}
	return nil
}
