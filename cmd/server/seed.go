package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/service/auth"
	"github.com/taskboard/taskboard-api/internal/store"
)

// seedInput describes the administrator account to create.
type seedInput struct {
	Name     string
	Email    string
	Password string
}

// applyEnv fills unset fields from TASKBOARD_ADMIN_* variables.
func (in *seedInput) applyEnv(getenv func(string) string) {
	if in.Name == "" {
		in.Name = getenv("TASKBOARD_ADMIN_NAME")
	}
	if in.Name == "" {
		in.Name = "Administrator"
	}
	if in.Email == "" {
		in.Email = getenv("TASKBOARD_ADMIN_EMAIL")
	}
	if in.Password == "" {
		in.Password = getenv("TASKBOARD_ADMIN_PASSWORD")
	}
}

// adminSeeder creates the first administrator.
type adminSeeder struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger
}

func newAdminSeeder(users store.UserStore, bcryptCost int, logger *slog.Logger) (*adminSeeder, error) {
	hasher, err := auth.NewBcryptHasher(bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}
	return &adminSeeder{users: users, hasher: hasher, logger: logger}, nil
}

// Seed returns the administrator with the given email, creating it when
// missing. An existing account keeps its password and is granted
// administrator rights if it lacks them. created reports whether a new
// account was stored.
func (s *adminSeeder) Seed(ctx context.Context, in seedInput) (user *domain.User, created bool, err error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return nil, false, errors.New("administrator email is required (--email or TASKBOARD_ADMIN_EMAIL)")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsAdmin {
			if existing, err = s.users.SetAdmin(ctx, existing.ID, true); err != nil {
				return nil, false, fmt.Errorf("failed to grant administrator rights: %w", err)
			}
			s.logger.Info("granted administrator rights to existing user", "user_id", existing.ID)
		}
		return existing, false, nil
	case !errors.Is(err, store.ErrUserNotFound):
		return nil, false, fmt.Errorf("failed to look up administrator: %w", err)
	}

	if strings.TrimSpace(in.Password) == "" {
		return nil, false, errors.New("administrator password is required (--password or TASKBOARD_ADMIN_PASSWORD)")
	}
	user, err = domain.NewUser(in.Name, email, in.Password)
	if err != nil {
		return nil, false, err
	}
	if user.HashedPassword, err = s.hasher.Hash(user.Password); err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = ""
	user.IsAdmin = true

	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to create administrator: %w", err)
	}
	s.logger.Info("administrator created", "user_id", user.ID)
	return user, true, nil
}
