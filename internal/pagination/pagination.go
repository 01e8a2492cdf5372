package pagination

import "github.com/gin-gonic/gin"

const (
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage keeps Offset well inside int range.
	MaxPage = 1_000_000
)

// Params holds validated page/limit query parameters.
type Params struct {
	Page  int
	Limit int
}

// query distinguishes an absent parameter from an explicit zero.
type query struct {
	Page  *int `form:"page" binding:"omitempty,min=1,max=1000000"`
	Limit *int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Meta is echoed back alongside list results.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// FromQuery binds page and limit from the query string, applying defaults.
func FromQuery(c *gin.Context) (Params, error) {
	var q query
	if err := c.ShouldBindQuery(&q); err != nil {
		return Params{}, err
	}
	var p Params
	if q.Page != nil {
		p.Page = *q.Page
	}
	if q.Limit != nil {
		p.Limit = *q.Limit
	}
	return p.normalize(), nil
}

// New builds Params from raw values, applying defaults and bounds.
func New(page, limit int) Params {
	return Params{Page: page, Limit: limit}.normalize()
}

func (p Params) normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes the page for a result set of total rows.
func (p Params) Meta(total int) Meta {
	return Meta{Page: p.Page, Limit: p.Limit, Total: total}
}
