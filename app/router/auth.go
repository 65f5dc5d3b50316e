package router

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Middleware guards admin routes with a bearer token
type Middleware struct {
	jwtSecret []byte
}

// NewMiddleware creates the auth middleware from the JWT_SECRET environment
// variable. An empty secret disables auth (local development).
func NewMiddleware() *Middleware {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Printf("⚠️  JWT_SECRET is not set, admin routes are unprotected")
	}
	return &Middleware{jwtSecret: []byte(secret)}
}

// RequireAuth verifies the Authorization bearer token on admin endpoints
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(m.jwtSecret) == 0 {
			next(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := &jwt.RegisteredClaims{}

		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}
