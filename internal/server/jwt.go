package server

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonathan/consultant-match/internal/config"
	"github.com/jonathan/consultant-match/internal/server/middleware"
)

// Claims are the claims accepted on platform-issued bearer tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTVerifier verifies HMAC-signed bearer tokens. Tokens are issued by the
// platform in front of this service; the verifier never signs.
type JWTVerifier struct {
	config config.JWTConfig
	parser *jwt.Parser
}

// NewJWTVerifier creates a verifier for the given configuration.
func NewJWTVerifier(cfg config.JWTConfig) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &JWTVerifier{config: cfg, parser: jwt.NewParser(opts...)}
}

// ValidateToken validates a token and returns its claims.
func (v *JWTVerifier) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.config.Secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		default:
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

// AsTokenValidator adapts the verifier to middleware.TokenValidator.
func (v *JWTVerifier) AsTokenValidator() middleware.TokenValidator {
	return tokenValidator{verifier: v}
}

type tokenValidator struct {
	verifier *JWTVerifier
}

func (t tokenValidator) ValidateToken(tokenString string) (middleware.SubjectGetter, error) {
	claims, err := t.verifier.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
