package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT(exp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: exp,
		TokenIssuer:    "placement-test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWT(time.Hour)

	token, expiresIn, err := svc.GenerateToken(Session{UserID: 42, Kind: KindStudent, Role: "student"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), expiresIn)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, Session{UserID: 42, Kind: KindStudent, Role: "student"}, claims.Session())
	assert.Equal(t, "42", claims.Subject)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := newTestJWT(time.Hour)

	t.Run("expired", func(t *testing.T) {
		expired := newTestJWT(-time.Minute)
		token, _, err := expired.GenerateToken(Session{UserID: 1, Kind: KindStaff, Role: "admin"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour})
		token, _, err := other.GenerateToken(Session{UserID: 1, Kind: KindStaff, Role: "admin"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown kind", func(t *testing.T) {
		token, _, err := svc.GenerateToken(Session{UserID: 1, Kind: "robot", Role: "admin"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPasswords(t *testing.T) {
	pw, err := GeneratePassword()
	require.NoError(t, err)
	assert.Len(t, pw, GeneratedPasswordLength)
	for _, r := range pw {
		assert.True(t, strings.ContainsRune(passwordAlphabet, r))
	}

	hash, err := HashPassword(pw)
	require.NoError(t, err)
	assert.NotEqual(t, pw, hash)
	assert.True(t, CheckPassword(hash, pw))
	assert.False(t, CheckPassword(hash, pw+"x"))
}
