package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  = OrderSide("buy")
	OrderSideSell = OrderSide("sell")
)

// ParseOrderSide accepts the CLI spellings "BUY"/"SELL" in any case.
func ParseOrderSide(s string) (OrderSide, error) {
	switch strings.ToLower(s) {
	case "buy":
		return OrderSideBuy, nil
	case "sell":
		return OrderSideSell, nil
	}
	return "", fmt.Errorf("order side must be BUY or SELL, got %q", s)
}

const (
	OrderStatusPending  = "pending"
	OrderStatusOpen     = "open"
	OrderStatusDone     = "done"
	OrderStatusRejected = "rejected"
)

const DoneReasonFilled = "filled"

// OrderRequest is the venue order-creation payload. Exactly one of Funds or
// Size is set, depending on which of the market's currencies the user amount
// is denominated in. Amounts travel as strings already quantized to the
// market's increments.
type OrderRequest struct {
	Type      string    `json:"type"`
	Side      OrderSide `json:"side"`
	ProductID string    `json:"product_id"`
	Funds     string    `json:"funds,omitempty"`
	Size      string    `json:"size,omitempty"`
}

// Order is the venue's view of a submitted order. It is created and mutated
// by the venue only; this process observes it by polling.
type Order struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Side          OrderSide       `json:"side"`
	Status        string          `json:"status"`
	DoneReason    string          `json:"done_reason,omitempty"`
	FilledSize    decimal.Decimal `json:"filled_size"`
	ExecutedValue decimal.Decimal `json:"executed_value"`
	FillFees      decimal.Decimal `json:"fill_fees"`
	Settled       bool            `json:"settled"`
	CreatedAt     string          `json:"created_at"`
	DoneAt        string          `json:"done_at,omitempty"`
}

// IsOpen reports whether the order is still working at the venue.
func (order *Order) IsOpen() bool {
	return order.Status == OrderStatusPending || order.Status == OrderStatusOpen
}

// VenueError is the venue's error envelope (a response carrying a "message"
// field). It is decided once at the API boundary so callers branch on an
// explicit type instead of probing response keys.
type VenueError struct {
	Message string `json:"message"`
}

func (venueError *VenueError) Error() string {
	return venueError.Message
}

// IsNotFound reports whether the venue does not know the requested resource.
func (venueError *VenueError) IsNotFound() bool {
	return venueError.Message == "NotFound"
}
