package shared

import "math"

const (
	// DefaultLimit applies when a listing omits the limit.
	DefaultLimit = 10
	// MaxLimit caps the page size.
	MaxLimit = 100
)

// PageRequest carries the requested page window.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize applies defaults and clamps the limit into 1..MaxLimit.
func (p PageRequest) Normalize() PageRequest {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset of the page.
func (p PageRequest) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// PageMeta contains metadata for paginated listings.
type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPageMeta computes pagination metadata. An empty listing still has one page.
func NewPageMeta(req PageRequest, total int) PageMeta {
	req = req.Normalize()
	totalPages := 1
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(req.Limit)))
	}
	return PageMeta{Page: req.Page, Limit: req.Limit, TotalItems: total, TotalPages: totalPages}
}
