package orders

import (
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/icecream-backend/pkg/enums"
)

// representation is where a stored order keeps its line items.
type representation interface {
	kind() enums.OrderRepresentation
	items() ([]ItemDTO, error)
}

type itemsRepresentation struct {
	stored StoredOrder
}

func (r itemsRepresentation) kind() enums.OrderRepresentation {
	return enums.OrderRepresentationItems
}

func (r itemsRepresentation) items() ([]ItemDTO, error) {
	out := make([]ItemDTO, 0, len(r.stored.Items))
	for _, it := range r.stored.Items {
		out = append(out, ItemDTO{Flavor: it.Flavor, Quantity: it.Quantity, Price: it.Price})
	}
	return out, nil
}

type cupsRepresentation struct {
	blob *string
}

func (r cupsRepresentation) kind() enums.OrderRepresentation {
	return enums.OrderRepresentationCups
}

func (r cupsRepresentation) items() ([]ItemDTO, error) {
	if r.blob == nil {
		return nil, fmt.Errorf("cups order without cups data")
	}
	flat, err := flattenCups(json.RawMessage(*r.blob))
	if err != nil {
		return nil, err
	}
	out := make([]ItemDTO, 0, len(flat))
	for _, it := range flat {
		dto := ItemDTO{Flavor: it.Flavor, Quantity: it.Quantity}
		if it.Price != nil {
			dto.Price = *it.Price
		}
		out = append(out, dto)
	}
	return out, nil
}

type ticketRepresentation struct{}

func (ticketRepresentation) kind() enums.OrderRepresentation {
	return enums.OrderRepresentationTicket
}

func (ticketRepresentation) items() ([]ItemDTO, error) {
	return nil, nil
}

// representationOf picks the variant matching a stored order's tag. Unknown
// tags fall back to the normalized rows.
func representationOf(stored StoredOrder) representation {
	switch stored.Order.Representation {
	case enums.OrderRepresentationCups:
		return cupsRepresentation{blob: stored.Order.Cups}
	case enums.OrderRepresentationTicket:
		return ticketRepresentation{}
	default:
		return itemsRepresentation{stored: stored}
	}
}
