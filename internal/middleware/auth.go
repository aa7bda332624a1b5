package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const requestContextKey contextKey = "request_context"

// RequestContext carries the authenticated identity. Every repository
// call is scoped by TenantID; nothing reads ambient auth state.
type RequestContext struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Email    string
	Role     string
}

// Claims is the JWT payload issued by the auth service.
type Claims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// FromContext returns the RequestContext stored by Auth.
func FromContext(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey).(RequestContext)
	return rc, ok
}

// WithRequestContext injects an identity, used by tests.
func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// Auth validates the bearer token (Authorization header, falling back
// to the HttpOnly "token" cookie) and stores the RequestContext.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				unauthorized(w, "missing token")
				return
			}

			claims, err := ValidateToken(tokenString, secret)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}
			tenantID, err := uuid.Parse(claims.TenantID)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			rc := RequestContext{
				UserID:   userID,
				TenantID: tenantID,
				Email:    claims.Email,
				Role:     claims.Role,
			}
			next.ServeHTTP(w, r.WithContext(WithRequestContext(r.Context(), rc)))
		})
	}
}

// ValidateToken parses and checks an HS256 token.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
