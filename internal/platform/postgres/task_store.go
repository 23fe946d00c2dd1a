package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/store"
)

const taskColumns = `id, user_id, title, description, status, priority, "order", created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.Order, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]domain.Task, error) {
	defer func() { _ = rows.Close() }()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *PostgresTaskStore) stampNew(task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now
	return nil
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := s.stampNew(task); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		task.ID, task.UserID, task.Title, task.Description, string(task.Status), string(task.Priority),
		task.Order, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", mapTaskWriteError(err))
	}

	s.logger.DebugContext(ctx, "task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// Append implements store.TaskStore.Append
func (s *PostgresTaskStore) Append(ctx context.Context, task *domain.Task) error {
	if err := s.stampNew(task); err != nil {
		return err
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6,
			(SELECT COALESCE(MAX("order"), 0) + 1 FROM tasks WHERE user_id = $2),
			$7, $8)
		RETURNING "order"`,
		task.ID, task.UserID, task.Title, task.Description, string(task.Status), string(task.Priority),
		task.CreatedAt, task.UpdatedAt,
	).Scan(&task.Order)
	if err != nil {
		return fmt.Errorf("failed to append task: %w", mapTaskWriteError(err))
	}

	s.logger.DebugContext(ctx, "task appended",
		slog.String("task_id", task.ID.String()),
		slog.Int("order", task.Order))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", MapError(err))
	}
	return task, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	updatedAt := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, "order" = $5, updated_at = $6
		WHERE id = $7`,
		task.Title, task.Description, string(task.Status), string(task.Priority), task.Order, updatedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", mapTaskWriteError(err))
	}
	if err := requireAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	task.UpdatedAt = updatedAt
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", MapError(err))
	}
	if err := requireAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}
	return nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter domain.TaskFilter,
) ([]domain.Task, error) {
	q := buildTaskQuery(userID, filter)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE `+q.Where+` ORDER BY `+q.OrderBy,
		q.Args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", MapError(err))
	}
	return scanTasks(rows)
}

// ListPage implements store.TaskStore.ListPage
func (s *PostgresTaskStore) ListPage(
	ctx context.Context,
	userID uuid.UUID,
	filter domain.TaskFilter,
) (*domain.Page[domain.Task], error) {
	filter = filter.Normalized()
	if !filter.Paginated() {
		filter.Page, filter.PerPage = 1, domain.DefaultTaskPerPage
	}
	q := buildTaskQuery(userID, filter)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE `+q.Where, q.Args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", MapError(err))
	}

	var a argList
	a.args = q.Args
	limit, offset := a.add(filter.PerPage), a.add(filter.Offset())
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE `+q.Where+
			` ORDER BY `+q.OrderBy+` LIMIT `+limit+` OFFSET `+offset,
		a.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list task page: %w", MapError(err))
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}

	return &domain.Page[domain.Task]{
		Items: tasks,
		Meta:  domain.NewPageMeta(filter.Page, filter.PerPage, total, len(tasks)),
	}, nil
}

// Owners implements store.TaskStore.Owners
func (s *PostgresTaskStore) Owners(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	owners := make(map[uuid.UUID]uuid.UUID, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	var a argList
	in := a.addAll(len(ids), func(i int) any { return ids[i] })
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id FROM tasks WHERE id IN (`+in+`)`, a.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up task owners: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id, owner uuid.UUID
		if err := rows.Scan(&id, &owner); err != nil {
			return nil, fmt.Errorf("failed to scan task owner: %w", err)
		}
		owners[id] = owner
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task owners: %w", err)
	}
	return owners, nil
}

// Reorder implements store.TaskStore.Reorder
func (s *PostgresTaskStore) Reorder(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	now := time.Now().UTC()
	for position, id := range ids {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE tasks SET "order" = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
			position+1, now, id, userID,
		); err != nil {
			return fmt.Errorf("failed to reorder task %s: %w", id, MapError(err))
		}
	}

	s.logger.DebugContext(ctx, "tasks reordered",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(ids)))
	return nil
}

// Statistics implements store.TaskStore.Statistics
func (s *PostgresTaskStore) Statistics(ctx context.Context, userID uuid.UUID) (*domain.TaskStatistics, error) {
	var st domain.TaskStatistics
	err := s.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE priority = 'high'),
			COUNT(*) FILTER (WHERE priority = 'medium'),
			COUNT(*) FILTER (WHERE priority = 'low')
		FROM tasks WHERE user_id = $1`,
		userID,
	).Scan(&st.Total, &st.Completed, &st.Pending, &st.HighPriority, &st.MediumPriority, &st.LowPriority)
	if err != nil {
		return nil, fmt.Errorf("failed to compute task statistics: %w", MapError(err))
	}
	return &st, nil
}

// MatchingTitles implements store.TaskStore.MatchingTitles
func (s *PostgresTaskStore) MatchingTitles(
	ctx context.Context,
	userID uuid.UUID,
	query string,
	limit int,
) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT title FROM tasks
		WHERE user_id = $1 AND title ILIKE $2
		ORDER BY title
		LIMIT $3`,
		userID, containsPattern(query), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search titles: %w", MapError(err))
	}
	return scanStrings(rows)
}

// MatchingDescriptions implements store.TaskStore.MatchingDescriptions
func (s *PostgresTaskStore) MatchingDescriptions(
	ctx context.Context,
	userID uuid.UUID,
	query string,
) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT description FROM tasks
		WHERE user_id = $1 AND description IS NOT NULL AND description <> '' AND description ILIKE $2`,
		userID, containsPattern(query),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search descriptions: %w", MapError(err))
	}
	return scanStrings(rows)
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer func() { _ = rows.Close() }()

	out := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate values: %w", err)
	}
	return out, nil
}

// DeleteOlderThan implements store.TaskStore.DeleteOlderThan
func (s *PostgresTaskStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, []uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `DELETE FROM tasks WHERE created_at < $1 RETURNING user_id`, cutoff)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to delete old tasks: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var deleted int64
	seen := make(map[uuid.UUID]struct{})
	users := make([]uuid.UUID, 0)
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return 0, nil, fmt.Errorf("failed to scan deleted task owner: %w", err)
		}
		deleted++
		if _, ok := seen[userID]; !ok {
			seen[userID] = struct{}{}
			users = append(users, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("failed to iterate deleted tasks: %w", err)
	}

	s.logger.InfoContext(ctx, "old tasks deleted",
		slog.Int64("deleted", deleted),
		slog.Int("users_affected", len(users)),
		slog.Time("cutoff", cutoff))
	return deleted, users, nil
}
