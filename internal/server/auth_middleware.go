package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/server/authctx"
)

// AuthMiddleware verifies the bearer token and puts the current user on the
// request context. Only access tokens pass; refresh tokens carry a different
// token_type claim and are rejected here.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || raw == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			user, err := userFromClaims(claims)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(authctx.WithCurrentUser(r.Context(), user)))
		})
	}
}

func userFromClaims(claims jwt.MapClaims) (authctx.CurrentUser, error) {
	if tokenType, _ := claims["token_type"].(string); tokenType != "access" {
		return authctx.CurrentUser{}, errors.New("invalid token")
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return authctx.CurrentUser{}, errors.New("invalid subject")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	return authctx.CurrentUser{ID: id, Email: email, Name: name, Role: domain.UserRole(role)}, nil
}

// RequireRole gates a route group to the given roles.
func RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[domain.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := authctx.FromContext(r.Context())
			if user == nil {
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}
			if _, ok := allowed[user.Role]; !ok && len(allowed) > 0 {
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
