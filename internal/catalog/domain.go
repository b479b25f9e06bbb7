package catalog

import (
	"errors"
	"time"
)

// Category enumerates the supported product categories.
type Category string

const (
	CategoryVegetables Category = "Vegetables"
	CategoryFruits     Category = "Fruits"
	CategoryGrains     Category = "Grains"
	CategoryDairy      Category = "Dairy"
	CategoryMeat       Category = "Meat"
	CategoryPoultry    Category = "Poultry"
	CategorySeafood    Category = "Seafood"
)

// shelfLifeDays maps each category to its fixed shelf life.
var shelfLifeDays = map[Category]int{
	CategoryVegetables: 10,
	CategoryFruits:     14,
	CategoryGrains:     365,
	CategoryDairy:      7,
	CategoryMeat:       7,
	CategoryPoultry:    5,
	CategorySeafood:    3,
}

// Valid reports whether the category is one of the supported values.
func (c Category) Valid() bool {
	_, ok := shelfLifeDays[c]
	return ok
}

// Unit enumerates supported stock units.
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitGram     Unit = "g"
	UnitLitre    Unit = "litre"
	UnitPiece    Unit = "piece"
	UnitDozen    Unit = "dozen"
	UnitCrate    Unit = "crate"
)

// Valid reports whether the unit is one of the supported values.
func (u Unit) Valid() bool {
	switch u {
	case UnitKilogram, UnitGram, UnitLitre, UnitPiece, UnitDozen, UnitCrate:
		return true
	}
	return false
}

// Market identifies where a product is sold.
type Market string

const (
	MarketLocal  Market = "Local"
	MarketExport Market = "Export"
)

// Valid reports whether the market is one of the supported values.
func (m Market) Valid() bool {
	return m == MarketLocal || m == MarketExport
}

// Status is the derived lifecycle label of a product. It is cached on the
// record and recomputed on every mutation; it can drift between reads when
// time passes without a write.
type Status string

const (
	StatusInStock      Status = "In Stock"
	StatusLowStock     Status = "Low Stock"
	StatusOutOfStock   Status = "Out of Stock"
	StatusExpiringSoon Status = "Expiring Soon"
)

// DefaultMinStockLevel applies when a product is created without a threshold.
const DefaultMinStockLevel = 5

// Product represents one sellable or exportable good.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	Quantity      float64   `json:"quantity"`
	Unit          Unit      `json:"unit"`
	Price         float64   `json:"price"`
	Market        Market    `json:"market"`
	MinStockLevel float64   `json:"min_stock_level"`
	CreationDate  time.Time `json:"creation_date"`
	ExpiryDate    time.Time `json:"expiry_date"`
	Status        Status    `json:"status"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListFilter narrows product listings.
type ListFilter struct {
	Market Market
	Status Status
	Page   int
	PerPage int
}

// ErrUnknownCategory indicates an unsupported category value.
var ErrUnknownCategory = errors.New("catalog: unknown category")
