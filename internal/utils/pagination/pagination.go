package pagination

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Params is a page request as sent by the dashboard (1-based pages).
type Params struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

// Meta is returned alongside every listing.
type Meta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Normalize applies defaults and clamps the page size.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Limit is the SQL LIMIT of the normalized page.
func (p Params) Limit() int {
	return p.Normalize().PageSize
}

// Offset is the SQL OFFSET of the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Meta builds the response metadata for a listing with total matches.
func (p Params) Meta(total int) *Meta {
	n := p.Normalize()
	return &Meta{Total: total, Page: n.Page, PageSize: n.PageSize}
}
