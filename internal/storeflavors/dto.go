package storeflavors

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreFlavorDTO is a catalog flavor plus whether the store sells it.
type StoreFlavorDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	StoreActive int             `json:"store_active"`
}

func fromRow(r FlavorRow) StoreFlavorDTO {
	return StoreFlavorDTO{
		ID:          r.ID,
		Name:        r.Name,
		Price:       r.Price,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt.UTC(),
		StoreActive: r.StoreActive,
	}
}

// AssignmentInput references a flavor by name or surrogate id. A nil Active
// counts as active.
type AssignmentInput struct {
	FlavorID   *int64
	FlavorName *string
	Active     *bool
}

func (a AssignmentInput) isActive() bool {
	return a.Active == nil || *a.Active
}
