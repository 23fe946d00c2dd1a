package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskboard/taskboard-api/internal/config"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

// newTestJWTService creates a service with a 60 minute access lifetime and a
// one day refresh lifetime, observing the given clock.
func newTestJWTService(t *testing.T, secret string, now func() time.Time) JWTService {
	t.Helper()
	svc, err := NewJWTServiceWithClock(config.AuthConfig{
		JWTSecret:                   secret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}, now)
	require.NoError(t, err)
	return svc
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	t.Parallel()
	_, err := NewJWTService(config.AuthConfig{
		JWTSecret:                   "too-short",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	})
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	svc := newTestJWTService(t, testSecret, fixedClock(fixedTime))

	token, err := svc.GenerateToken(context.Background(), userID, "session-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(60*time.Minute).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, 60*time.Minute, svc.TokenLifetime())
	assert.Equal(t, 24*time.Hour, svc.RefreshTokenLifetime())
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	t.Parallel()
	svc := newTestJWTService(t, testSecret, time.Now)
	userID := uuid.New()

	a, err := svc.GenerateToken(context.Background(), userID, "session-1")
	require.NoError(t, err)
	b, err := svc.GenerateToken(context.Background(), userID, "session-1")
	require.NoError(t, err)

	ca, err := svc.ValidateToken(context.Background(), a)
	require.NoError(t, err)
	cb, err := svc.ValidateToken(context.Background(), b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) (JWTService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, testSecret, fixedClock(fixedTime))
				token, _ := svc.GenerateToken(context.Background(), userID, "session-1")
				return svc, token
			},
		},
		{
			name: "expired within clock skew",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token, _ := newTestJWTService(t, testSecret, fixedClock(fixedTime)).
					GenerateToken(context.Background(), userID, "session-1")
				later := fixedTime.Add(61 * time.Minute)
				return newTestJWTService(t, testSecret, fixedClock(later)), token
			},
		},
		{
			name: "expired token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token, _ := newTestJWTService(t, testSecret, fixedClock(fixedTime)).
					GenerateToken(context.Background(), userID, "session-1")
				later := fixedTime.Add(2 * time.Hour)
				return newTestJWTService(t, testSecret, fixedClock(later)), token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "invalid signature",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token, _ := newTestJWTService(t, testSecret, fixedClock(fixedTime)).
					GenerateToken(context.Background(), userID, "session-1")
				return newTestJWTService(t, wrongSecret, fixedClock(fixedTime)), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, fixedClock(fixedTime)), "this.is.not.a.valid.jwt.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "refresh token used as access token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, testSecret, fixedClock(fixedTime))
				token, _ := svc.GenerateRefreshToken(context.Background(), userID, "session-1")
				return svc, token
			},
			wantErr: ErrWrongTokenType,
		},
		{
			name: "unsigned token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				claims := jwtCustomClaims{
					UserID:    userID,
					TokenType: TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
					SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, fixedClock(fixedTime)), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "token without expiry",
			setupFunc: func(t *testing.T) (JWTService, string) {
				claims := jwtCustomClaims{UserID: userID, TokenType: TokenTypeAccess}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, fixedClock(fixedTime)), token
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tt.setupFunc(t)
			claims, err := svc.ValidateToken(context.Background(), token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
			} else {
				require.NoError(t, err)
				assert.Equal(t, userID, claims.UserID)
			}
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	svc := newTestJWTService(t, testSecret, fixedClock(fixedTime))
	ctx := context.Background()

	refresh, err := svc.GenerateRefreshToken(ctx, userID, "session-1")
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		claims, err := svc.ValidateRefreshToken(ctx, refresh)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, TokenTypeRefresh, claims.TokenType)
		assert.Equal(t, fixedTime.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("access token rejected", func(t *testing.T) {
		access, err := svc.GenerateToken(ctx, userID, "session-1")
		require.NoError(t, err)
		_, err = svc.ValidateRefreshToken(ctx, access)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("expired", func(t *testing.T) {
		later := newTestJWTService(t, testSecret, fixedClock(fixedTime.Add(48*time.Hour)))
		_, err := later.ValidateRefreshToken(ctx, refresh)
		assert.ErrorIs(t, err, ErrExpiredRefreshToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := newTestJWTService(t, wrongSecret, fixedClock(fixedTime))
		_, err := other.ValidateRefreshToken(ctx, refresh)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}
