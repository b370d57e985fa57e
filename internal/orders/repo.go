package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/icecream-backend/pkg/db/models"
	"github.com/angelmondragon/icecream-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// listWithItemsSQL pages headers in a subquery so LIMIT counts orders, not
// joined item rows. %s is the validated sort direction.
const listWithItemsSQL = `SELECT o.id, o.representation, o.client_timestamp, o.customer, o.store,
  o.subtotal, o.discount, o.total, o.ticket, o.cups, o.created_at,
  i.id AS item_id, i.flavor AS item_flavor, i.quantity AS item_quantity, i.price AS item_price
FROM orders o
LEFT JOIN order_items i ON i.order_id = o.id
WHERE o.id IN (SELECT id FROM orders ORDER BY id %[1]s LIMIT ?)
ORDER BY o.id %[1]s, i.id ASC`

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	ListWithItems(ctx context.Context, limit int, dir enums.SortDirection) ([]StoredOrder, error)
}

// StoredOrder is an order header with its normalized rows, in id order.
type StoredOrder struct {
	Order models.Order
	Items []models.OrderItem
}

type joinedRow struct {
	ID              int64               `gorm:"column:id"`
	Representation  string              `gorm:"column:representation"`
	ClientTimestamp *string             `gorm:"column:client_timestamp"`
	Customer        *string             `gorm:"column:customer"`
	Store           *string             `gorm:"column:store"`
	Subtotal        decimal.NullDecimal `gorm:"column:subtotal"`
	Discount        decimal.NullDecimal `gorm:"column:discount"`
	Total           decimal.Decimal     `gorm:"column:total"`
	Ticket          *string             `gorm:"column:ticket"`
	Cups            *string             `gorm:"column:cups"`
	CreatedAt       time.Time           `gorm:"column:created_at"`
	ItemID          *int64              `gorm:"column:item_id"`
	ItemFlavor      *string             `gorm:"column:item_flavor"`
	ItemQuantity    *int                `gorm:"column:item_quantity"`
	ItemPrice       decimal.NullDecimal `gorm:"column:item_price"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) ListWithItems(ctx context.Context, limit int, dir enums.SortDirection) ([]StoredOrder, error) {
	if !dir.IsValid() {
		return nil, fmt.Errorf("invalid sort direction %q", dir)
	}
	var rows []joinedRow
	query := fmt.Sprintf(listWithItemsSQL, dir.String())
	if err := r.db.WithContext(ctx).Raw(query, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return groupRows(rows), nil
}

func groupRows(rows []joinedRow) []StoredOrder {
	out := make([]StoredOrder, 0)
	for _, row := range rows {
		if len(out) == 0 || out[len(out)-1].Order.ID != row.ID {
			out = append(out, StoredOrder{Order: models.Order{
				ID:              row.ID,
				Representation:  enums.OrderRepresentation(row.Representation),
				ClientTimestamp: row.ClientTimestamp,
				Customer:        row.Customer,
				Store:           row.Store,
				Subtotal:        row.Subtotal,
				Discount:        row.Discount,
				Total:           row.Total,
				Ticket:          row.Ticket,
				Cups:            row.Cups,
				CreatedAt:       row.CreatedAt,
			}})
		}
		if row.ItemID == nil {
			continue
		}
		item := models.OrderItem{ID: *row.ItemID, OrderID: row.ID, Price: row.ItemPrice.Decimal}
		if row.ItemFlavor != nil {
			item.Flavor = *row.ItemFlavor
		}
		if row.ItemQuantity != nil {
			item.Quantity = *row.ItemQuantity
		}
		last := &out[len(out)-1]
		last.Items = append(last.Items, item)
	}
	return out
}
