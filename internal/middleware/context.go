package middleware

import (
	"context"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
)

type ctxKey int

const userKey ctxKey = iota

func InjectUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFrom(ctx context.Context) *domain.User {
	v := ctx.Value(userKey)
	if v == nil {
		return nil
	}
	return v.(*domain.User)
}
