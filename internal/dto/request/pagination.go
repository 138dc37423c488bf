package request

import (
	"net/url"

	"woodeoo-auth/pkg/utils"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PaginatedRequest is the page window of the admin user listing.
type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

// PageFromQuery reads ?page= and ?per_page=; bad values fall back to defaults.
func PageFromQuery(query url.Values) *PaginatedRequest {
	return &PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), DefaultPerPage),
	}
}

// Normalize clamps the window to a first page of at most MaxPerPage users.
func (p *PaginatedRequest) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	p.PerPage = p.Limit()
}

func (p PaginatedRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

func (p PaginatedRequest) Limit() int {
	if p.PerPage < 1 {
		return DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		return MaxPerPage
	}
	return p.PerPage
}
