// Package auth adapts the external authentication subsystem to the chat
// core's narrow identity contract: bearer credential in, identity out.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Resolver struct {
	secret []byte
	users  UserLookup
}

func NewResolver(secret string, users UserLookup) *Resolver {
	return &Resolver{
		secret: []byte(secret),
		users:  users,
	}
}

// Resolve verifies a bearer token and loads the identity it names. The
// returned user carries the admin-controlled Active flag; callers decide
// whether an inactive identity is acceptable for their operation.
func (r *Resolver) Resolve(ctx context.Context, tokenString string) (*domain.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	// SimpleJWT-compatible claim: user_id is a numeric id.
	rawID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return r.users.GetByID(ctx, int64(rawID))
}

// TokenFromRequest extracts the bearer credential: the token query
// parameter, the cookie-based login flow's cookies, or the Authorization
// header, in that order.
func TokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	for _, name := range []string{"access_token", "access", "token"} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}

	const prefix = "Bearer "
	if header := r.Header.Get("Authorization"); len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}

	return ""
}
