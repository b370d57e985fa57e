package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/icecream-backend/pkg/enums"
)

// Order is the header row of a sale. Representation records where its line
// items live: order_items rows, the Cups blob, or only the Ticket text.
type Order struct {
	ID              int64                     `gorm:"column:id;primaryKey;autoIncrement"`
	Representation  enums.OrderRepresentation `gorm:"column:representation;not null;default:'items'"`
	ClientTimestamp *string                   `gorm:"column:client_timestamp"`
	Customer        *string                   `gorm:"column:customer"`
	Store           *string                   `gorm:"column:store"`
	Subtotal        decimal.NullDecimal       `gorm:"column:subtotal;type:numeric"`
	Discount        decimal.NullDecimal       `gorm:"column:discount;type:numeric"`
	Total           decimal.Decimal           `gorm:"column:total;type:numeric;not null"`
	Ticket          *string                   `gorm:"column:ticket"`
	Cups            *string                   `gorm:"column:cups"`
	CreatedAt       time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is one normalized line of an order.
type OrderItem struct {
	ID       int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID  int64           `gorm:"column:order_id;not null;index"`
	Flavor   string          `gorm:"column:flavor;not null"`
	Quantity int             `gorm:"column:quantity;not null"`
	Price    decimal.Decimal `gorm:"column:price;type:numeric;not null"`
}

func (OrderItem) TableName() string { return "order_items" }
