package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTaskFilterValidate(t *testing.T) {
	from, _ := ParseDate("date_from", "2024-05-10")
	to, _ := ParseDate("date_to", "2024-05-01")

	tests := []struct {
		name    string
		filter  TaskFilter
		field   string
		wantErr bool
	}{
		{"zero filter", TaskFilter{}, "", false},
		{"bad status", TaskFilter{Statuses: []TaskStatus{"archived"}}, "status", true},
		{"bad priority", TaskFilter{Priorities: []TaskPriority{"urgent"}}, "priority", true},
		{"long search", TaskFilter{Search: strings.Repeat("s", 256)}, "search", true},
		{"inverted dates", TaskFilter{DateFrom: from, DateTo: to}, "date_to", true},
		{"bad sort field", TaskFilter{SortBy: "user_id"}, "sort_by", true},
		{"bad direction", TaskFilter{SortBy: SortByTitle, SortDirection: "up"}, "sort_direction", true},
		{"per page too small", TaskFilter{PerPage: 4}, "per_page", true},
		{"per page too large", TaskFilter{PerPage: 51}, "per_page", true},
		{"valid page", TaskFilter{Page: 2, PerPage: 5, SortBy: SortByPriority}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, vErr.Field)
			}
		})
	}
}

func TestTaskFilterNormalized(t *testing.T) {
	f := TaskFilter{Search: "  milk ", SortBy: SortByTitle, PerPage: 5}.Normalized()
	if f.Search != "milk" {
		t.Errorf("Expected trimmed search, got %q", f.Search)
	}
	if f.SortDirection != SortAsc {
		t.Errorf("Expected default asc direction, got %q", f.SortDirection)
	}
	if f.Page != 1 || f.PerPage != 5 {
		t.Errorf("Expected page 1 of 5, got page %d of %d", f.Page, f.PerPage)
	}

	unpaged := TaskFilter{}.Normalized()
	if unpaged.Paginated() {
		t.Error("Expected zero filter to stay unpaginated")
	}

	paged := TaskFilter{Page: 3}.Normalized()
	if paged.PerPage != DefaultTaskPerPage {
		t.Errorf("Expected default per page, got %d", paged.PerPage)
	}
	if paged.Offset() != 2*DefaultTaskPerPage {
		t.Errorf("Expected offset %d, got %d", 2*DefaultTaskPerPage, paged.Offset())
	}
}

func TestTaskFilterCacheKey(t *testing.T) {
	a := TaskFilter{
		Priorities: []TaskPriority{TaskPriorityLow, TaskPriorityHigh},
		Search:     "Milk ",
		SortBy:     SortByTitle,
	}
	b := TaskFilter{
		Priorities:    []TaskPriority{TaskPriorityHigh, TaskPriorityLow},
		Search:        "milk",
		SortBy:        SortByTitle,
		SortDirection: SortAsc,
	}
	if a.CacheKey() != b.CacheKey() {
		t.Errorf("Expected equivalent filters to share a key:\n%s\n%s", a.CacheKey(), b.CacheKey())
	}

	c := b
	c.Page = 2
	if c.CacheKey() == b.CacheKey() {
		t.Error("Expected different pages to have different keys")
	}
}

func TestTaskFilterCacheKeyEscapesSearch(t *testing.T) {
	to, _ := ParseDate("date_to", "2024-01-01")
	dated := TaskFilter{Search: "x", DateTo: to}
	forged := TaskFilter{Search: "x&to=2024-01-01"}

	if forged.CacheKey() == dated.CacheKey() {
		t.Fatalf("Expected search text not to collide with a date filter: %s", forged.CacheKey())
	}
	if n := strings.Count(forged.CacheKey(), "&to="); n != 1 {
		t.Errorf("Expected exactly one to= field, got %d in %s", n, forged.CacheKey())
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("date_from", "2024-02-29")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !d.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected date %v", d)
	}

	_, err = ParseDate("date_from", "29/02/2024")
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "date_from" {
		t.Errorf("Expected date_from validation error, got %v", err)
	}
}
