package enums

import "strings"

// SortDirection orders list results by primary key.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

func (d SortDirection) String() string {
	return string(d)
}

func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

// ParseSortDirection is lenient: anything other than "asc" (any case) sorts
// newest first.
func ParseSortDirection(value string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(value), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}
