package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmtolibas/cafeline-backend/pkg/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecret: "test-secret", JWTIssuer: "cafeline"}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testAuthConfig()
	userID := uuid.New()
	email := "juan@example.com"

	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: userID,
		Role:   RoleCustomer,
		Email:  &email,
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RoleCustomer, claims.Role)
	require.NotNil(t, claims.Email)
	assert.Equal(t, email, *claims.Email)
	assert.Nil(t, claims.Phone)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := MintAccessToken(testAuthConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   RoleAdmin,
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(config.AuthConfig{JWTSecret: "other-secret", JWTIssuer: "cafeline"}, token)
	assert.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	token, err := MintAccessToken(config.AuthConfig{JWTSecret: "test-secret", JWTIssuer: "somewhere-else"}, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   RoleCustomer,
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(testAuthConfig(), token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testAuthConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   RoleCustomer,
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	assert.Error(t, err)
}

func TestMintRejectsInvalidRole(t *testing.T) {
	_, err := MintAccessToken(testAuthConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   Role("superuser"),
	})
	assert.Error(t, err)
}
