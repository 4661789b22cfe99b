package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerifier(t *testing.T) *JWTVerifier {
	t.Helper()
	v, err := NewJWTVerifier(Config{Secret: "test-secret-key", Issuer: "test-issuer", TTL: time.Minute})
	require.NoError(t, err)
	return v
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJWTVerifier_SignAndVerify(t *testing.T) {
	v := newVerifier(t)
	want := domain.Identity{UserID: 17, Name: "ana", Email: "ana@example.com"}

	token, err := v.Sign(want)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := newVerifier(t)
	now := time.Now()
	valid := jwt.RegisteredClaims{
		Issuer:    "test-issuer",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not.a.jwt"},
		{name: "empty", token: ""},
		{
			name:  "wrong secret",
			token: sign(t, jwt.SigningMethodHS256, []byte("other"), Claims{ID: 1, Name: "a", RegisteredClaims: valid}),
		},
		{
			name: "expired",
			token: sign(t, jwt.SigningMethodHS256, []byte("test-secret-key"), Claims{ID: 1, Name: "a", RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
			}}),
		},
		{
			name: "wrong issuer",
			token: sign(t, jwt.SigningMethodHS256, []byte("test-secret-key"), Claims{ID: 1, Name: "a", RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			}}),
		},
		{
			name:  "alg none",
			token: sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, Claims{ID: 1, Name: "a", RegisteredClaims: valid}),
		},
		{
			name:  "missing user id",
			token: sign(t, jwt.SigningMethodHS256, []byte("test-secret-key"), Claims{Name: "a", RegisteredClaims: valid}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			require.ErrorIs(t, err, domain.ErrAuth)
		})
	}
}

func TestJWTVerifier_ExpiredIsDistinguishable(t *testing.T) {
	v := newVerifier(t)
	token := sign(t, jwt.SigningMethodHS256, []byte("test-secret-key"), Claims{ID: 1, Name: "a", RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "test-issuer",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}})
	_, err := v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewJWTVerifier_EmptySecret(t *testing.T) {
	_, err := NewJWTVerifier(Config{})
	require.Error(t, err)
}
