package orders

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ItemInput is one sold line as clients send it, flat or inside a cup.
type ItemInput struct {
	Flavor   string           `json:"flavor"`
	Quantity int              `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}

// CreateOrderInput carries an order submission. Item data arrives either as
// Items, as the raw Cups JSON, or not at all for ticket-only orders.
type CreateOrderInput struct {
	Items           []ItemInput
	Cups            json.RawMessage
	Total           *decimal.Decimal
	Subtotal        *decimal.Decimal
	Discount        *decimal.Decimal
	Ticket          *string
	Customer        *string
	Store           *string
	ClientTimestamp *string
}

// CreateResult acknowledges a persisted order.
type CreateResult struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// ItemDTO is a canonical order line.
type ItemDTO struct {
	Flavor   string          `json:"flavor"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderDTO is the canonical view of an order, whatever shape it was stored in.
type OrderDTO struct {
	ID              int64            `json:"id"`
	Timestamp       string           `json:"timestamp"`
	ClientTimestamp *string          `json:"clientTimestamp,omitempty"`
	Customer        *string          `json:"customer,omitempty"`
	Store           *string          `json:"store,omitempty"`
	Subtotal        *decimal.Decimal `json:"subtotal,omitempty"`
	Discount        *decimal.Decimal `json:"discount,omitempty"`
	Total           decimal.Decimal  `json:"total"`
	Ticket          *string          `json:"ticket,omitempty"`
	Cups            json.RawMessage  `json:"cups,omitempty"`
	Items           []ItemDTO        `json:"items"`
}

// ListOptions tunes retrieval.
type ListOptions struct {
	// TicketFallback recovers items from receipt text for orders that
	// resolve to no items.
	TicketFallback bool
}
