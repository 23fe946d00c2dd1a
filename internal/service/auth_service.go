package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/service/auth"
	"github.com/taskboard/taskboard-api/internal/store"
)

// TokenPair is the credential set handed to a client after it authenticates.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is when AccessToken stops being accepted.
	ExpiresAt time.Time
}

// AuthResult is the outcome of a successful register, login or refresh.
type AuthResult struct {
	User   *domain.User
	Tokens TokenPair
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService handles account creation and the token lifecycle.
type AuthService interface {
	// Register creates a regular user and signs them in.
	// Returns store.ErrEmailExists when the email is taken.
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)

	// Login verifies credentials and issues a token pair.
	// Returns ErrInvalidCredentials for an unknown email or wrong password.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Refresh exchanges a refresh token for a new pair in the same session.
	// The presented refresh token is revoked so it cannot be replayed.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)

	// Logout ends the session the access token belongs to. Both the access
	// token and every refresh token of that session stop being accepted.
	Logout(ctx context.Context, claims *auth.Claims) error

	// CurrentUser loads the user a token was issued for.
	CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// Authenticate validates an access token and checks it has not been
	// revoked.
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
}

type authService struct {
	userStore store.UserStore
	jwt       auth.JWTService
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	revoker   auth.TokenRevoker
	db        *sql.DB
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(
	userStore store.UserStore,
	jwtService auth.JWTService,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	revoker auth.TokenRevoker,
	db *sql.DB,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userStore: userStore,
		jwt:       jwtService,
		hasher:    hasher,
		verifier:  verifier,
		revoker:   revoker,
		db:        db,
		logger:    logger.With("component", "auth_service"),
		now:       time.Now,
	}
}

// Register implements AuthService.Register
func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	user, err := domain.NewUser(input.Name, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("registration with existing email rejected")
		} else {
			s.logger.Error("failed to save user to database", "error", err)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return s.issue(ctx, user, uuid.NewString())
}

// Login implements AuthService.Login
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userStore.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user for login: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("password mismatch on login", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return s.issue(ctx, user, uuid.NewString())
}

// Refresh implements AuthService.Refresh
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load user for refresh: %w", err)
	}

	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt); err != nil {
		return nil, err
	}

	sessionID := claims.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return s.issue(ctx, user, sessionID)
}

// Logout implements AuthService.Logout
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return auth.ErrMissingToken
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt); err != nil {
		s.logger.Error("failed to revoke token on logout",
			"error", err,
			"user_id", claims.UserID)
		return err
	}
	if claims.SessionID != "" {
		// Refresh tokens of this session may be younger than the access token.
		until := s.now().Add(s.jwt.RefreshTokenLifetime())
		if err := s.revoker.RevokeSession(ctx, claims.SessionID, until); err != nil {
			s.logger.Error("failed to revoke session on logout",
				"error", err,
				"user_id", claims.UserID)
			return err
		}
	}
	s.logger.Info("user logged out", "user_id", claims.UserID)
	return nil
}

// CurrentUser implements AuthService.CurrentUser
func (s *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// Authenticate implements AuthService.Authenticate
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.jwt.ValidateToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// checkRevoked rejects claims whose token or session has been revoked.
func (s *authService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked {
		revoked, err = s.revoker.IsSessionRevoked(ctx, claims.SessionID)
		if err != nil {
			return err
		}
	}
	if revoked {
		return auth.ErrRevokedToken
	}
	return nil
}

func (s *authService) issue(ctx context.Context, user *domain.User, sessionID string) (*AuthResult, error) {
	issuedAt := s.now()

	access, err := s.jwt.GenerateToken(ctx, user.ID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, user.ID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResult{
		User: user,
		Tokens: TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresAt:    issuedAt.Add(s.jwt.TokenLifetime()),
		},
	}, nil
}
