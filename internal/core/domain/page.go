package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects a 1-based page of a listing.
type PageRequest struct {
	Page int
	Size int
}

// Normalize clamps the request into the accepted range.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Skip is the number of records preceding the page.
func (p PageRequest) Skip() int64 {
	p = p.Normalize()
	return int64((p.Page - 1) * p.Size)
}
