package order

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutItem is one requested line item.
type CheckoutItem struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"omitempty,min=1,max=10"`
}

// CheckoutRequest initiates a purchase. Guest fields are required when
// the request carries no authenticated user.
type CheckoutRequest struct {
	Items      []CheckoutItem `json:"items" binding:"required,min=1,dive"`
	GuestEmail string         `json:"guest_email" binding:"omitempty,email"`
	GuestName  string         `json:"guest_name" binding:"omitempty,max=100"`
	// Gateway picks the payment provider. Empty means the default
	// (Razorpay); "stripe" routes international cards.
	Gateway string `json:"gateway" binding:"omitempty,max=20"`
}

// CheckoutResponse carries what the client needs to open the gateway
// checkout widget.
type CheckoutResponse struct {
	OrderID        uuid.UUID `json:"order_id"`
	OrderNo        string    `json:"order_no"`
	PurchaseID     string    `json:"purchase_id"`
	Gateway        string    `json:"gateway"`
	GatewayOrderID string    `json:"gateway_order_id"`
	GatewayKeyID   string    `json:"gateway_key_id"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
}

// SeedOrderRequest is the admin request to create a synthetic order.
type SeedOrderRequest struct {
	Items      []CheckoutItem `json:"items" binding:"required,min=1,dive"`
	GuestEmail string         `json:"guest_email" binding:"required,email"`
	GuestName  string         `json:"guest_name" binding:"omitempty,max=100"`
}

// OrderItemResponse is a line item as returned to customers.
type OrderItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	UnitPrice int64     `json:"unit_price"`
	Quantity  int64     `json:"quantity"`
	Amount    int64     `json:"amount"`
}

// OrderResponse is the customer-facing order representation.
type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	OrderNo      string              `json:"order_no"`
	PurchaseID   string              `json:"purchase_id"`
	Status       Status              `json:"status"`
	TotalAmount  int64               `json:"total_amount"`
	Currency     string              `json:"currency"`
	PDFDelivered bool                `json:"pdf_delivered"`
	EmailSent    bool                `json:"email_sent"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	Items        []OrderItemResponse `json:"items"`
}

// ListOrdersResponse is a paginated order listing.
type ListOrdersResponse struct {
	Orders     []*OrderResponse `json:"orders"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

func toOrderResponse(o *Order) *OrderResponse {
	resp := &OrderResponse{
		ID:           o.ID,
		OrderNo:      o.OrderNo,
		PurchaseID:   o.PurchaseID,
		Status:       o.Status,
		TotalAmount:  o.TotalAmount,
		Currency:     o.Currency,
		PDFDelivered: o.PDFDelivered,
		EmailSent:    o.EmailSent,
		CompletedAt:  o.CompletedAt,
		CreatedAt:    o.CreatedAt,
		Items:        make([]OrderItemResponse, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID: item.ProductID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Amount:    item.Amount,
		})
	}
	return resp
}
