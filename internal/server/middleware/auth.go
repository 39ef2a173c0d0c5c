// Package middleware provides HTTP middleware for bearer token authentication.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// subjectKey is the context key for storing the authenticated subject.
const subjectKey ContextKey = "subject"

// TokenValidator is an interface for validating bearer tokens.
// This allows the middleware to work with any token verifier implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (SubjectGetter, error)
}

// SubjectGetter exposes the subject ("sub") of validated token claims.
type SubjectGetter interface {
	GetSubject() (string, error)
}

// AuthMiddleware creates middleware that validates bearer tokens and adds the
// token subject to the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				unauthorized(w)
				return
			}

			subject, err := claims.GetSubject()
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="consultant-match"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
}

// GetSubject extracts the authenticated subject from the request context.
func GetSubject(r *http.Request) (string, error) {
	subject, ok := r.Context().Value(subjectKey).(string)
	if !ok {
		return "", fmt.Errorf("subject not found in request context")
	}
	return subject, nil
}

// SubjectKey returns the context key for the subject (for testing purposes).
func SubjectKey() ContextKey {
	return subjectKey
}
