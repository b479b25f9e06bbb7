package orders

import (
	"time"

	"github.com/farmstock/farmstock/internal/stock"
)

// CreateItemRequest is one requested order line.
type CreateItemRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest is the payload for order creation.
type CreateOrderRequest struct {
	Customer          Customer            `json:"customer"`
	Items             []CreateItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod     string              `json:"payment_method" validate:"required,oneof=cash card bank_transfer mobile_money"`
	ShippingCost      float64             `json:"shipping_cost" validate:"gte=0"`
	Tax               float64             `json:"tax" validate:"gte=0"`
	TransactionID     string              `json:"transaction_id"`
	EstimatedDelivery *time.Time          `json:"estimated_delivery"`
}

// CreateOrderResult carries the persisted order plus the per-item outcome of
// the decrement pass, which is not atomic with order persistence.
type CreateOrderResult struct {
	Order        Order              `json:"order"`
	StockResults []stock.ItemResult `json:"stock_results"`
}

// UpdateStatusRequest changes the order status.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}

// UpdatePaymentStatusRequest changes the payment status.
type UpdatePaymentStatusRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" validate:"required"`
}
