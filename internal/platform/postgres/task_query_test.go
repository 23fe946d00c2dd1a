package postgres

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/domain"
)

func TestBuildTaskQuery(t *testing.T) {
	userID := uuid.MustParse("7f1d1f1a-8a4b-4e59-9c1b-5f0a2f3c4d5e")
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter domain.TaskFilter
		want   taskQuery
	}{
		{
			name:   "owner only in display order",
			filter: domain.TaskFilter{},
			want: taskQuery{
				Where:   "user_id = $1",
				Args:    []any{userID},
				OrderBy: `"order" ASC, created_at ASC, id ASC`,
			},
		},
		{
			name: "every predicate",
			filter: domain.TaskFilter{
				Statuses:      []domain.TaskStatus{domain.TaskStatusCompleted},
				Priorities:    []domain.TaskPriority{domain.TaskPriorityHigh, domain.TaskPriorityLow},
				Search:        " 50%_off ",
				DateFrom:      &from,
				DateTo:        &to,
				SortBy:        domain.SortByPriority,
				SortDirection: domain.SortDesc,
			},
			want: taskQuery{
				Where: "user_id = $1 AND status IN ($2) AND priority IN ($3, $4)" +
					" AND (title ILIKE $5 OR description ILIKE $5)" +
					" AND created_at >= $6 AND created_at < $7",
				Args: []any{
					userID, "completed", "high", "low", `%50\%\_off%`,
					from, time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC),
				},
				OrderBy: priorityRankSQL + " DESC, id ASC",
			},
		},
		{
			name:   "blank search is ignored",
			filter: domain.TaskFilter{Search: "   ", SortBy: domain.SortByTitle},
			want: taskQuery{
				Where:   "user_id = $1",
				Args:    []any{userID},
				OrderBy: "title ASC, id ASC",
			},
		},
		{
			name:   "explicit order sort",
			filter: domain.TaskFilter{SortBy: domain.SortByOrder, SortDirection: domain.SortDesc},
			want: taskQuery{
				Where:   "user_id = $1",
				Args:    []any{userID},
				OrderBy: `"order" DESC, id ASC`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildTaskQuery(userID, tt.filter)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("buildTaskQuery() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestContainsPattern(t *testing.T) {
	tests := map[string]string{
		"milk":      "%milk%",
		"100%":      `%100\%%`,
		"a_b":       `%a\_b%`,
		`back\path`: `%back\\path%`,
	}
	for in, want := range tests {
		if got := containsPattern(in); got != want {
			t.Errorf("containsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}
