package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/model"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseRoundTrip(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, "test-secret", Claims{
		UserID: userID,
		Role:   model.UserRoleDispatcher,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := NewParser("test-secret").Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, model.UserRoleDispatcher, claims.Role)
}

func TestParseWrongSecret(t *testing.T) {
	token := signToken(t, "test-secret", Claims{
		UserID: uuid.New(),
		Role:   model.UserRoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := NewParser("other-secret").Parse(token)
	require.Error(t, err)
}

func TestParseExpiredToken(t *testing.T) {
	token := signToken(t, "test-secret", Claims{
		UserID: uuid.New(),
		Role:   model.UserRoleViewer,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	_, err := NewParser("test-secret").Parse(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}
