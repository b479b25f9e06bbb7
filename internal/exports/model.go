package exports

import (
	"time"

	"github.com/farmstock/farmstock/internal/catalog"
)

// EntryStatus enumerates export shipment states.
type EntryStatus string

const (
	StatusPending   EntryStatus = "Pending"
	StatusShipped   EntryStatus = "Shipped"
	StatusDelivered EntryStatus = "Delivered"
	StatusCancelled EntryStatus = "Cancelled"
)

// Valid reports whether the status is a known value.
func (s EntryStatus) Valid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Entry represents one shipment of a single product to one country. The
// committed quantity has already been deducted from the product's stock.
type Entry struct {
	ID            int64        `json:"id"`
	ProductID     int64        `json:"product_id"`
	ExportCountry string       `json:"export_country"`
	ExportDate    time.Time    `json:"export_date"`
	Quantity      float64      `json:"quantity"`
	Unit          catalog.Unit `json:"unit"`
	ExportPrice   float64      `json:"export_price"`
	Status        EntryStatus  `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// ListFilter narrows export entry listings.
type ListFilter struct {
	ProductID int64
	Status    EntryStatus
	Page      int
	PerPage   int
}
