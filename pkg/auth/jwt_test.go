package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTValidator_RoundTrip(t *testing.T) {
	v, err := NewJWTValidator(JWTConfig{SecretKey: "s3cret", Issuer: "evidence-map", Audience: []string{"evidence-map-api"}})
	require.NoError(t, err)

	token, err := v.GenerateToken("user-1", "u@example.com", []string{"lawyer"})
	require.NoError(t, err)

	claims, err := v.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, []string{"lawyer"}, claims.Roles)
}

func TestJWTValidator_Rejects(t *testing.T) {
	v, err := NewJWTValidator(JWTConfig{SecretKey: "s3cret", Issuer: "evidence-map"})
	require.NoError(t, err)

	other, err := NewJWTValidator(JWTConfig{SecretKey: "different", Issuer: "evidence-map"})
	require.NoError(t, err)
	foreign, err := other.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	wrongIssuer, err := NewJWTValidator(JWTConfig{SecretKey: "s3cret", Issuer: "someone-else"})
	require.NoError(t, err)
	misissued, err := wrongIssuer.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "evidence-map",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, err := expired.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "empty", token: "", want: ErrMissingToken},
		{name: "wrong secret", token: foreign, want: ErrInvalidSignature},
		{name: "wrong issuer", token: misissued, want: ErrInvalidClaims},
		{name: "expired", token: expiredToken, want: ErrExpiredToken},
		{name: "garbage", token: "not-a-jwt", want: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewJWTValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
}

func TestUserContext(t *testing.T) {
	_, err := GetUserFromContext(context.Background())
	assert.Error(t, err)

	ctx := SetUserInContext(context.Background(), &UserContext{UserID: "u"})
	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u", user.UserID)
}
