// Package pagination turns page/limit/sort query values into offset queries.
package pagination

import (
	"fmt"
	"strings"
)

const (
	DefaultPage = 1
	// MaxLimit caps the page size any list endpoint accepts.
	MaxLimit = 500
)

// SortField is one ORDER BY term.
type SortField struct {
	Column string
	Desc   bool
}

// Clause renders the term for GORM's Order.
func (s SortField) Clause() string {
	if s.Desc {
		return s.Column + " DESC"
	}
	return s.Column + " ASC"
}

// Params is a normalized page request.
type Params struct {
	Page  int
	Limit int
	Sort  []SortField
}

// New clamps page and limit, using defaultLimit when limit is not positive.
func New(page, limit, defaultLimit int, sort []SortField) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit, Sort: sort}
}

// Offset is the number of rows to skip.
func (p Params) Offset() int {
	if p.Page < 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// OrderBy joins the sort fields for GORM.
func (p Params) OrderBy() string {
	clauses := make([]string, 0, len(p.Sort))
	for _, field := range p.Sort {
		clauses = append(clauses, field.Clause())
	}
	return strings.Join(clauses, ", ")
}

// ParseSort reads "name,-createdAt" style input. allowed maps API field
// names to columns; unknown fields are an error. Empty input returns fallback.
func ParseSort(raw string, allowed map[string]string, fallback string) ([]SortField, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	var fields []SortField
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
		column, ok := allowed[part]
		if !ok {
			return nil, fmt.Errorf("unsupported sort field %q", part)
		}
		fields = append(fields, SortField{Column: column, Desc: desc})
	}
	return fields, nil
}

// TotalPages rounds total/limit up.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
