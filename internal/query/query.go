// Package query parses list parameters (pagination, sorting, filters) and
// applies them to gorm statements.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is a validated page request.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// SortField is one resolved ORDER BY term.
type SortField struct {
	Column string
	Desc   bool
}

// Sort is an ordered list of resolved terms.
type Sort []SortField

// Fields maps public sort keys to column names.
type Fields map[string]string

// Params is the parsed form of a list request.
type Params struct {
	Page
	Sort Sort
}

// Result is the paged response envelope.
type Result[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewResult builds an envelope, never emitting a nil data slice.
func NewResult[T any](data []T, page Page, total int64) Result[T] {
	if data == nil {
		data = []T{}
	}
	pages := 0
	if page.Limit > 0 && total > 0 {
		pages = int(math.Ceil(float64(total) / float64(page.Limit)))
	}
	return Result[T]{
		Data:       data,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: pages,
	}
}

// ParsePage reads page and limit. Missing values take defaults; limit is clamped to MaxLimit.
func ParsePage(values url.Values) (Page, error) {
	page := Page{Page: DefaultPage, Limit: DefaultLimit}
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Page{}, exception.Invalid("page", "page must be a positive integer")
		}
		page.Page = n
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Page{}, exception.Invalid("limit", "limit must be a positive integer")
		}
		page.Limit = min(n, MaxLimit)
	}
	// Offset must stay representable.
	if page.Page-1 > math.MaxInt/page.Limit {
		return Page{}, exception.Invalid("page", "page is out of range")
	}
	return page, nil
}

// ParseSort reads "sort=price,-created_at". Unknown keys are rejected.
// An empty sort falls back to fallback.
func ParseSort(raw string, fields Fields, fallback Sort) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	var (
		sort Sort
		seen = make(map[string]struct{})
	)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := false
		switch part[0] {
		case '-':
			desc = true
			part = part[1:]
		case '+':
			part = part[1:]
		}
		column, ok := fields[part]
		if !ok {
			return nil, exception.Invalid("sort", "unsupported sort field: "+part)
		}
		if _, dup := seen[column]; dup {
			continue
		}
		seen[column] = struct{}{}
		sort = append(sort, SortField{Column: column, Desc: desc})
	}
	if len(sort) == 0 {
		return fallback, nil
	}
	return sort, nil
}

// Parse reads page and sort parameters together.
func Parse(values url.Values, fields Fields, fallback Sort) (Params, error) {
	page, err := ParsePage(values)
	if err != nil {
		return Params{}, err
	}
	sort, err := ParseSort(values.Get("sort"), fields, fallback)
	if err != nil {
		return Params{}, err
	}
	return Params{Page: page, Sort: sort}, nil
}

// Scope applies ORDER BY, LIMIT and OFFSET.
func (p Params) Scope(db *gorm.DB) *gorm.DB {
	for _, f := range p.Sort {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: f.Column}, Desc: f.Desc})
	}
	return db.Limit(p.Limit).Offset(p.Offset())
}

// Bool parses an optional boolean filter.
func Bool(values url.Values, key string) (*bool, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, exception.Invalid(key, key+" must be a boolean")
	}
	return &b, nil
}
