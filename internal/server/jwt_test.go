package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/consultant-match/internal/config"
)

const testSecret = "test-secret-key-for-jwt-testing-only"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func unsignedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return token
}

func validClaims() jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   "platform-user-1",
		Issuer:    "consultant-platform",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
}

func TestJWTVerifier_Valid(t *testing.T) {
	v := NewJWTVerifier(config.JWTConfig{Secret: testSecret})

	claims, err := v.ValidateToken(signToken(t, testSecret, jwt.SigningMethodHS256, validClaims()))
	require.NoError(t, err)

	subject, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "platform-user-1", subject)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := NewJWTVerifier(config.JWTConfig{Secret: testSecret, Issuer: "consultant-platform"})

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	noExp := validClaims()
	noExp.ExpiresAt = nil

	otherIssuer := validClaims()
	otherIssuer.Issuer = "someone-else"

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "malformed", token: "not.a.token"},
		{name: "wrong secret", token: signToken(t, "another-secret-of-enough-length", jwt.SigningMethodHS256, validClaims())},
		{name: "expired", token: signToken(t, testSecret, jwt.SigningMethodHS256, expired)},
		{name: "missing exp", token: signToken(t, testSecret, jwt.SigningMethodHS256, noExp)},
		{name: "wrong issuer", token: signToken(t, testSecret, jwt.SigningMethodHS256, otherIssuer)},
		{name: "alg none", token: unsignedToken(t, validClaims())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestJWTVerifier_Leeway(t *testing.T) {
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-10 * time.Second))
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	_, err := NewJWTVerifier(config.JWTConfig{Secret: testSecret}).ValidateToken(token)
	assert.Error(t, err)

	_, err = NewJWTVerifier(config.JWTConfig{Secret: testSecret, Leeway: time.Minute}).ValidateToken(token)
	assert.NoError(t, err)
}

func TestJWTVerifier_HS512(t *testing.T) {
	v := NewJWTVerifier(config.JWTConfig{Secret: testSecret})

	_, err := v.ValidateToken(signToken(t, testSecret, jwt.SigningMethodHS512, validClaims()))
	assert.NoError(t, err)
}

func TestJWTVerifier_AsTokenValidator(t *testing.T) {
	validator := NewJWTVerifier(config.JWTConfig{Secret: testSecret}).AsTokenValidator()

	claims, err := validator.ValidateToken(signToken(t, testSecret, jwt.SigningMethodHS256, validClaims()))
	require.NoError(t, err)
	subject, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "platform-user-1", subject)

	_, err = validator.ValidateToken("garbage")
	assert.Error(t, err)
}
