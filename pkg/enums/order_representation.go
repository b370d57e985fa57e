package enums

import "fmt"

// OrderRepresentation tags how an order's line items were stored.
type OrderRepresentation string

const (
	// OrderRepresentationItems keeps one order_items row per line.
	OrderRepresentationItems OrderRepresentation = "items"
	// OrderRepresentationCups keeps only the cups JSON blob on the header.
	OrderRepresentationCups OrderRepresentation = "cups"
	// OrderRepresentationTicket keeps only the free-text receipt.
	OrderRepresentationTicket OrderRepresentation = "ticket"
)

var validOrderRepresentations = []OrderRepresentation{
	OrderRepresentationItems,
	OrderRepresentationCups,
	OrderRepresentationTicket,
}

// String implements fmt.Stringer.
func (r OrderRepresentation) String() string {
	return string(r)
}

// IsValid reports whether the value is a known OrderRepresentation.
func (r OrderRepresentation) IsValid() bool {
	for _, candidate := range validOrderRepresentations {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseOrderRepresentation converts raw input into an OrderRepresentation.
func ParseOrderRepresentation(value string) (OrderRepresentation, error) {
	for _, candidate := range validOrderRepresentations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order representation %q", value)
}
