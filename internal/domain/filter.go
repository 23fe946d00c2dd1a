package domain

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// SortField names a task column a list may be sorted by.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
	SortByTitle     SortField = "title"
	SortByPriority  SortField = "priority"
	SortByStatus    SortField = "status"
	SortByOrder     SortField = "order"
)

// IsValid reports whether f is on the sort whitelist.
func (f SortField) IsValid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByTitle, SortByPriority, SortByStatus, SortByOrder:
		return true
	}
	return false
}

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// IsValid reports whether d is asc or desc.
func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

// Pagination bounds for task lists.
const (
	DefaultTaskPerPage = 10
	MinPerPage         = 5
	MaxPerPage         = 50
	MaxSearchLength    = 255
)

// DateLayout is the calendar date format accepted by date filters.
const DateLayout = "2006-01-02"

// TaskFilter selects, orders and optionally paginates a user's tasks.
// The zero value selects every task in display order.
type TaskFilter struct {
	Statuses      []TaskStatus
	Priorities    []TaskPriority
	Search        string
	DateFrom      *time.Time // inclusive, compared against the creation date
	DateTo        *time.Time // inclusive
	SortBy        SortField
	SortDirection SortDirection
	Page          int
	PerPage       int
}

// Paginated reports whether the caller asked for a page of results.
func (f TaskFilter) Paginated() bool {
	return f.Page > 0 || f.PerPage > 0
}

// Validate checks ranges and whitelists.
func (f TaskFilter) Validate() error {
	for _, s := range f.Statuses {
		if !s.IsValid() {
			return NewValidationError("status", "must be either pending or completed", ErrInvalidTaskStatus)
		}
	}
	for _, p := range f.Priorities {
		if !p.IsValid() {
			return NewValidationError("priority", "must be one of: low, medium, high", ErrInvalidTaskPriority)
		}
	}
	if utf8.RuneCountInString(f.Search) > MaxSearchLength {
		return NewValidationError("search", "must not exceed 255 characters", nil)
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return NewValidationError("date_to", "must be a date after or equal to date_from", nil)
	}
	if f.SortBy != "" && !f.SortBy.IsValid() {
		return NewValidationError("sort_by", "is not a sortable field", ErrInvalidSortField)
	}
	if f.SortDirection != "" && !f.SortDirection.IsValid() {
		return NewValidationError("sort_direction", "must be asc or desc", ErrInvalidSortDirection)
	}
	if f.Page < 0 {
		return NewValidationError("page", "must be at least 1", nil)
	}
	if f.PerPage != 0 && (f.PerPage < MinPerPage || f.PerPage > MaxPerPage) {
		return NewValidationError("per_page", fmt.Sprintf("must be between %d and %d", MinPerPage, MaxPerPage), nil)
	}
	return nil
}

// Normalized returns a copy with defaults applied: trimmed search, an
// explicit sort direction, and page/per_page filled in for paginated
// filters.
func (f TaskFilter) Normalized() TaskFilter {
	out := f
	out.Search = strings.TrimSpace(f.Search)
	if out.SortBy != "" && out.SortDirection == "" {
		out.SortDirection = SortAsc
	}
	if out.Paginated() {
		if out.Page == 0 {
			out.Page = 1
		}
		if out.PerPage == 0 {
			out.PerPage = DefaultTaskPerPage
		}
	}
	return out
}

// Offset is the number of rows skipped before the current page.
func (f TaskFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PerPage
}

// CacheKey encodes the filter canonically so equal filters share a cache
// entry regardless of how the query string was written. Values are
// query-escaped so free text cannot forge another filter's key.
func (f TaskFilter) CacheKey() string {
	n := f.Normalized()

	statuses := make([]string, len(n.Statuses))
	for i, s := range n.Statuses {
		statuses[i] = string(s)
	}
	priorities := make([]string, len(n.Priorities))
	for i, p := range n.Priorities {
		priorities[i] = string(p)
	}
	slices.Sort(statuses)
	slices.Sort(priorities)

	v := url.Values{}
	v.Set("status", strings.Join(statuses, ","))
	v.Set("priority", strings.Join(priorities, ","))
	v.Set("search", strings.ToLower(n.Search))
	v.Set("from", formatDate(n.DateFrom))
	v.Set("to", formatDate(n.DateTo))
	v.Set("sort", string(n.SortBy)+":"+string(n.SortDirection))
	v.Set("page", strconv.Itoa(n.Page))
	v.Set("per_page", strconv.Itoa(n.PerPage))
	return v.Encode()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(field, raw string) (*time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return nil, NewValidationError(field, "is not a valid date", nil)
	}
	return &t, nil
}
