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

const userColumns = `id, name, email, hashed_password, is_admin, created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	if user.Password != "" {
		return fmt.Errorf("%w: plaintext password must be hashed before storing", store.ErrInvalidEntity)
	}
	if err := user.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Name, user.Email, user.HashedPassword, user.IsAdmin, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			s.logger.DebugContext(ctx, "email already registered", slog.String("user_id", user.ID.String()))
		}
		return fmt.Errorf("failed to create user: %w", mapEmailConflict(err))
	}

	s.logger.DebugContext(ctx, "user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", MapError(err))
	}
	return user, nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`,
		domain.NormalizeEmail(email),
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", MapError(err))
	}
	return user, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	if user.Password != "" {
		return fmt.Errorf("%w: plaintext password must be hashed before storing", store.ErrInvalidEntity)
	}
	if err := user.Validate(); err != nil {
		return err
	}

	user.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = $1, email = $2, hashed_password = $3, updated_at = $4 WHERE id = $5`,
		user.Name, user.Email, user.HashedPassword, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", mapEmailConflict(err))
	}
	if err := requireAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}
	return nil
}

// SetAdmin implements store.UserStore.SetAdmin
func (s *PostgresUserStore) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE users SET is_admin = $1, updated_at = $2 WHERE id = $3 RETURNING `+userColumns,
		isAdmin, time.Now().UTC(), id,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to set admin flag: %w", MapError(err))
	}

	s.logger.InfoContext(ctx, "user role changed",
		slog.String("user_id", id.String()),
		slog.Bool("is_admin", isAdmin))
	return user, nil
}
