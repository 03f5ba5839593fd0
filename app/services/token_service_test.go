package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService(t *testing.T) *TokenServiceImpl {
	t.Helper()
	svc, err := NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars",
	)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{name: "valid symmetric key configuration", secretKey: "test-secret-key-for-jwt-signing-32-chars"},
		{name: "missing secret key", expectError: true},
		{name: "rsa without keys", useRSAKeys: true, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewTokenService(time.Minute, time.Hour, "iss", "aud", tt.useRSAKeys, "", "", tt.secretKey)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.Minute, svc.AccessTokenTTL())
		})
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	svc := createTestTokenService(t)

	access, refresh, err := svc.GenerateTokens(42)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, claims.IssuedAt.Add(15*time.Minute), claims.ExpiresAt, time.Second)

	refreshClaims, err := svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refreshClaims.TokenType)
}

func TestValidateToken_Rejections(t *testing.T) {
	svc := createTestTokenService(t)

	other, err := NewTokenService(time.Minute, time.Hour, "test-issuer", "test-audience", false, "", "", "a-completely-different-secret-key")
	require.NoError(t, err)
	foreign, _, err := other.GenerateTokens(1)
	require.NoError(t, err)

	wrongAudience, err := NewTokenService(time.Minute, time.Hour, "test-issuer", "someone-else", false, "", "", "test-secret-key-for-jwt-signing-32-chars")
	require.NoError(t, err)
	misdirected, _, err := wrongAudience.GenerateTokens(1)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, userClaims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ID:        "old",
			Issuer:    "test-issuer",
			Audience:  jwt.ClaimStrings{"test-audience"},
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte("test-secret-key-for-jwt-signing-32-chars"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-jwt", ErrTokenInvalid},
		{"wrong signature", foreign, ErrTokenInvalid},
		{"wrong audience", misdirected, ErrTokenInvalid},
		{"expired", expired, ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRefreshToken(t *testing.T) {
	svc := createTestTokenService(t)

	access, refresh, err := svc.GenerateTokens(7)
	require.NoError(t, err)

	t.Run("AccessTokenCannotRefresh", func(t *testing.T) {
		_, _, err := svc.RefreshToken(access)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	newAccess, newRefresh, err := svc.RefreshToken(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)

	t.Run("OldRefreshTokenIsSpent", func(t *testing.T) {
		_, _, err := svc.RefreshToken(refresh)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})
}

func TestRevokeToken(t *testing.T) {
	svc := createTestTokenService(t)

	access, _, err := svc.GenerateTokens(3)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(access))
	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// revoking twice is harmless
	assert.NoError(t, svc.RevokeToken(access))
	assert.Error(t, svc.RevokeToken("garbage"))
}
