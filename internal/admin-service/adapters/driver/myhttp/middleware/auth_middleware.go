package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shop-admin/internal/admin-service/adapters/driver/myhttp/handle"
	"shop-admin/internal/admin-service/core/domain/models"

	"github.com/golang-jwt/jwt"
)

type AuthMiddleware struct {
	accessSecret string
}

func NewAuthMiddleware(accessSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		accessSecret: accessSecret,
	}
}

// Wrap authenticates the request and stores the caller in its context.
// Authorization is left to the services.
func (am *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			handle.JsonError(w, http.StatusUnauthorized, errors.New("Empty JWT-Token"))
			return
		}

		caller, err := am.Authenticate(tokenString)
		if err != nil {
			handle.JsonError(w, http.StatusUnauthorized, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(models.WithCaller(r.Context(), caller)))
	})
}

// Authenticate verifies an HS256 token and turns its claims into a Caller.
func (am *AuthMiddleware) Authenticate(tokenString string) (models.Caller, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(am.accessSecret), nil
	})
	if err != nil {
		return models.Caller{}, errors.New("Failed to parse JWT-Token")
	}

	if !token.Valid {
		return models.Caller{}, errors.New("Invalid JWT-Token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Caller{}, errors.New("Invalid claims")
	}

	userId, ok := claims["user_id"].(string)
	if !ok || userId == "" {
		return models.Caller{}, errors.New("User id not found in token")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return models.Caller{}, errors.New("Expiry not found in token")
	}

	// a missing role is not an authentication failure, the guard denies it
	role, _ := claims["role"].(string)
	username, _ := claims["username"].(string)

	return models.Caller{
		UserId:    userId,
		Username:  username,
		Role:      role,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// websocket upgrades, so those may pass the token as access_token instead.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("access_token")
	}
	return ""
}

// SignToken issues a token in the format Wrap accepts. The storefront's
// identity provider owns real tokens; this serves local tooling and tests.
func SignToken(secret string, caller models.Caller, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": caller.UserId,
		"role":    caller.Role,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	if caller.Username != "" {
		claims["username"] = caller.Username
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
