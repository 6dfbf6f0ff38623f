package authutils_test

import (
	"context"
	"testing"
	"time"

	"codegen-server/internal/authutils"
	"codegen-server/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret string, claims domain.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyTokenSuccess(t *testing.T) {
	verifier, err := authutils.NewJWTVerifier(testSecret, nil)
	require.NoError(t, err)

	userID := uuid.New()
	tokenString := signToken(t, testSecret, domain.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := verifier.VerifyToken(context.Background(), tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestVerifyTokenExpired(t *testing.T) {
	verifier, err := authutils.NewJWTVerifier(testSecret, nil)
	require.NoError(t, err)

	tokenString := signToken(t, testSecret, domain.Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err = verifier.VerifyToken(context.Background(), tokenString)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	verifier, err := authutils.NewJWTVerifier(testSecret, nil)
	require.NoError(t, err)

	tokenString := signToken(t, "another-secret", domain.Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err = verifier.VerifyToken(context.Background(), tokenString)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestVerifyTokenMalformed(t *testing.T) {
	verifier, err := authutils.NewJWTVerifier(testSecret, nil)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestVerifyTokenMissingUserID(t *testing.T) {
	verifier, err := authutils.NewJWTVerifier(testSecret, nil)
	require.NoError(t, err)

	tokenString := signToken(t, testSecret, domain.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err = verifier.VerifyToken(context.Background(), tokenString)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestNewJWTVerifierEmptySecret(t *testing.T) {
	_, err := authutils.NewJWTVerifier("", nil)
	assert.Error(t, err)
}
