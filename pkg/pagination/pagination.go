package pagination

import (
	"strconv"
	"strings"

	"github.com/angelmondragon/icecream-backend/pkg/enums"
)

// DefaultLimit is the standard page size when a caller provides none.
const DefaultLimit = 20

// Params holds limit/direction inputs from controllers or services.
type Params struct {
	Limit     int
	Direction enums.SortDirection
}

// NormalizeLimit falls back to def (or DefaultLimit) for non-positive values.
// There is no upper bound.
func NormalizeLimit(limit, def int) int {
	if def <= 0 {
		def = DefaultLimit
	}
	if limit <= 0 {
		return def
	}
	return limit
}

// ParseLimit reads a raw query value leniently: anything that is not a
// positive integer yields the default.
func ParseLimit(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return NormalizeLimit(0, def)
	}
	return NormalizeLimit(n, def)
}

// Parse builds Params from raw limit and order query values.
func Parse(rawLimit, rawOrder string, def int) Params {
	return Params{
		Limit:     ParseLimit(rawLimit, def),
		Direction: enums.ParseSortDirection(rawOrder),
	}
}

// Normalize fills defaults on params built programmatically.
func (p Params) Normalize(def int) Params {
	p.Limit = NormalizeLimit(p.Limit, def)
	if !p.Direction.IsValid() {
		p.Direction = enums.SortDesc
	}
	return p
}
