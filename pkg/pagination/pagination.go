package pagination

// Params are page/page_size list parameters bound from the query string.
type Params struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// Normalize clamps the parameters to sane bounds.
func (p *Params) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}

	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20 // Default page size
	}
}

// GetOffset returns the row offset of the requested page.
func (p *Params) GetOffset() int {
	return (p.Page - 1) * p.PageSize
}

// GetLimit returns the page size as a query limit.
func (p *Params) GetLimit() int {
	return p.PageSize
}
