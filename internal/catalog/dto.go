package catalog

import (
	"time"

	"github.com/angelmondragon/icecream-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// FlavorDTO is the API shape of a catalog entry.
type FlavorDTO struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"createdAt"`
}

// FromModel maps a stored flavor to its DTO.
func FromModel(m models.Flavor) FlavorDTO {
	return FlavorDTO{
		ID:        m.ID,
		Name:      m.Name,
		Price:     m.Price,
		Active:    m.Active,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// AddInput carries a new catalog entry. Price is a pointer so a missing
// price can be told apart from zero.
type AddInput struct {
	Name  string
	Price *decimal.Decimal
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Price  *decimal.Decimal
	Active *bool
}
