// FilePath: api/middleware/api.middleware.auth.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mirnanodes/broilink-backend/internal/config"
	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/farmservice"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

// Claims is the JWT payload. Subject carries the user id, Roles the
// lowercase role tokens used throughout authorization checks.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTMiddleware issues and verifies the HMAC-signed tokens the API uses
// for authentication.
type JWTMiddleware struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewJWTMiddleware(cfg config.AuthConfig) *JWTMiddleware {
	return &JWTMiddleware{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		issuer: cfg.Issuer,
	}
}

// IssueToken signs a token for an authenticated user.
func (m *JWTMiddleware) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Roles: []string{models.RoleToken(user.RoleID)},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies the signature and expiry and returns the claims.
func (m *JWTMiddleware) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Authenticate validates the bearer token and puts the user id and
// roles on the request context.
func (m *JWTMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			handleError(w, errors.NewAuthError("no token provided", nil))
			return
		}

		claims, err := m.ParseToken(tokenString)
		if err != nil {
			handleError(w, errors.NewAuthError("invalid token", err))
			return
		}

		userID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			handleError(w, errors.NewAuthError("invalid token subject", err))
			return
		}

		ctx := context.WithValue(r.Context(), farmservice.ContextKeyUserID, userID)
		ctx = context.WithValue(ctx, farmservice.ContextKeyUserRoles, claims.Roles)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles rejects requests whose token carries none of the given
// role tokens. Admin always passes.
func (m *JWTMiddleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRoles := farmservice.GetUserRoles(r.Context())
			if !hasAnyRole(userRoles, roles) {
				handleError(w, errors.NewAuthorizationError("insufficient permissions", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) string {
	bearerToken := r.Header.Get("Authorization")
	parts := strings.Split(bearerToken, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

func hasAnyRole(userRoles, required []string) bool {
	if len(required) == 0 {
		return true
	}

	roleMap := make(map[string]bool, len(userRoles))
	for _, role := range userRoles {
		roleMap[role] = true
	}
	if roleMap["admin"] {
		return true
	}

	for _, want := range required {
		if roleMap[want] {
			return true
		}
	}
	return false
}

func handleError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*errors.APIError); ok {
		http.Error(w, apiErr.Message, apiErr.Code)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
