package exports

import (
	"time"

	"github.com/farmstock/farmstock/internal/catalog"
)

// CreateEntryRequest is the payload for export entry creation.
type CreateEntryRequest struct {
	ProductID     int64        `json:"product_id" validate:"required,gt=0"`
	ExportCountry string       `json:"export_country" validate:"required"`
	ExportDate    time.Time    `json:"export_date" validate:"required"`
	Quantity      float64      `json:"quantity" validate:"required,gt=0"`
	Unit          catalog.Unit `json:"unit" validate:"required"`
	ExportPrice   float64      `json:"export_price" validate:"required,gt=0"`
}

// UpdateEntryRequest patches an export entry. Nil fields are left unchanged;
// a quantity change is reconciled delta-only against the product's stock.
type UpdateEntryRequest struct {
	ExportCountry *string       `json:"export_country"`
	ExportDate    *time.Time    `json:"export_date"`
	Quantity      *float64      `json:"quantity"`
	Unit          *catalog.Unit `json:"unit"`
	ExportPrice   *float64      `json:"export_price"`
}

// UpdateStatusRequest changes the shipment status.
type UpdateStatusRequest struct {
	Status EntryStatus `json:"status" validate:"required"`
}
