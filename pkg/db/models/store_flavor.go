package models

import "time"

// StoreFlavor marks a flavor as sold at a store. Presence of the row is the
// activation; there is no inactive state.
type StoreFlavor struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	StoreName  string    `gorm:"column:store_name;not null;uniqueIndex:idx_store_flavor"`
	FlavorName string    `gorm:"column:flavor_name;not null;uniqueIndex:idx_store_flavor"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (StoreFlavor) TableName() string { return "store_flavors" }
