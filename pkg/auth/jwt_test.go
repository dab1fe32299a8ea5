package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(userID, "user@example.com", "test-secret", "treviro_service", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "treviro_service", claims.Issuer)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "", "secret-a", "treviro_service", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret-b")
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "", "test-secret", "treviro_service", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "test-secret")
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", "test-secret")
	assert.Error(t, err)
}
