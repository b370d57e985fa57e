package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Flavor is a catalog entry. Name is the natural key every API path and
// store assignment refers to; ID is a surrogate.
type Flavor struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string          `gorm:"column:name;not null;uniqueIndex"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric;not null"`
	Active    bool            `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Flavor) TableName() string { return "flavors" }
