package pagination

import (
	"net/http"
	"strconv"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns the first page with the default limit.
func DefaultParams() Params {
	return Params{
		Page:   1,
		Limit:  defaultLimit,
		Offset: 0,
	}
}

// FromRequest extracts ?page= and ?limit= from an HTTP request. Invalid or
// out-of-range values fall back to the defaults; limit is capped at 100.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 {
			p.Limit = min(v, maxLimit)
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// Meta is the pagination block returned next to a page of results.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewMeta computes the page count for total items under params.
func NewMeta(total int, params Params) Meta {
	pages := 0
	if params.Limit > 0 {
		pages = total / params.Limit
		if total%params.Limit > 0 {
			pages++
		}
	}

	return Meta{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
		Pages: pages,
	}
}
