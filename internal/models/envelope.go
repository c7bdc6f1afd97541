package models

// Envelope is the uniform JSON wrapper for every API response.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Code       string      `json:"code,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalDocs   int64 `json:"totalDocs"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*MaxLimit well inside int64.
	MaxPage = 1<<31 - 1
)

// PageRequest is a normalized page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest clamps page and limit to their defaults and bounds.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Skip returns the number of documents preceding the page.
func (p PageRequest) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// Paginate builds the pagination block for a page over totalDocs documents.
func (p PageRequest) Paginate(totalDocs int64) *Pagination {
	totalPages := 0
	if totalDocs > 0 {
		totalPages = int((totalDocs + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return &Pagination{
		Page:        p.Page,
		Limit:       p.Limit,
		TotalDocs:   totalDocs,
		TotalPages:  totalPages,
		HasNextPage: p.Page < totalPages,
		HasPrevPage: p.Page > 1,
	}
}

// MergePagination combines the pagination of independently paged collections
// that were queried with the same page request. Only totals are merged.
func MergePagination(p PageRequest, parts ...*Pagination) *Pagination {
	merged := &Pagination{Page: p.Page, Limit: p.Limit}
	for _, part := range parts {
		if part == nil {
			continue
		}
		merged.TotalDocs += part.TotalDocs
		if part.TotalPages > merged.TotalPages {
			merged.TotalPages = part.TotalPages
		}
	}
	merged.HasNextPage = merged.Page < merged.TotalPages
	merged.HasPrevPage = merged.Page > 1
	return merged
}

// Page is a slice of documents with its pagination block.
type Page[T any] struct {
	Items      []T
	Pagination *Pagination
}
