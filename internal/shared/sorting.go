package shared

import (
	"fmt"
	"strings"
)

// SortOrder is the direction of a listing sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort is a validated sort clause.
type Sort struct {
	Column string
	Order  SortOrder
}

// OrderBy renders the clause for a query builder.
func (s Sort) OrderBy() string {
	return s.Column + " " + strings.ToUpper(string(s.Order))
}

// ParseSort resolves a public sort field against an allow-list mapping field names to columns.
// Empty values fall back to fallback and ascending order.
func ParseSort(field, order, fallback string, allowed map[string]string) (Sort, error) {
	field = strings.TrimSpace(strings.ToLower(field))
	if field == "" {
		field = fallback
	}
	column, ok := allowed[field]
	if !ok {
		return Sort{}, fmt.Errorf("%w: invalid sort field %q", ErrInvalidInput, field)
	}
	dir := SortOrder(strings.TrimSpace(strings.ToLower(order)))
	switch dir {
	case "":
		dir = SortAsc
	case SortAsc, SortDesc:
	default:
		return Sort{}, fmt.Errorf("%w: invalid sort order %q", ErrInvalidInput, order)
	}
	return Sort{Column: column, Order: dir}, nil
}
