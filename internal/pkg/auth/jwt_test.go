package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
)

func testJWTService(accessExp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: 720 * time.Hour,
		TokenIssuer:     "student-visit-api",
	})
}

func testUser() *models.User {
	dept := int64(10)
	return &models.User{
		ID:           42,
		Email:        "admin@umich.edu",
		RoleType:     models.RoleDepartmentAdmin,
		DepartmentID: &dept,
		IsActive:     true,
	}
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := testJWTService(time.Hour)

	access, refresh, expiresIn, refreshExpiresIn, err := svc.GenerateTokenPair(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)
	assert.Positive(t, expiresIn)
	assert.Greater(t, refreshExpiresIn, expiresIn)

	claims, err := svc.ValidateAndExtractClaims(access)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "admin@umich.edu", claims.Email)
	assert.Equal(t, string(models.RoleDepartmentAdmin), claims.RoleType)
	require.NotNil(t, claims.DepartmentID)
	assert.Equal(t, int64(10), *claims.DepartmentID)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := testJWTService(-time.Minute)

	access, _, _, _, err := svc.GenerateTokenPair(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateAndExtractClaims(access)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	access, _, _, _, err := testJWTService(time.Hour).GenerateTokenPair(testUser())
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{
		SecretKey:       "different-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 720 * time.Hour,
	})
	_, err = other.ValidateAndExtractClaims(access)
	assert.Error(t, err)
}

func TestValidateEmptyToken(t *testing.T) {
	svc := testJWTService(time.Hour)

	_, err := svc.ValidateAndExtractClaims("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAndExtractClaims("not-a-jwt")
	assert.Error(t, err)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ExtractBearerToken("Basic dXNlcjpwYXNz")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}
