package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/GustavoFrossard/P.A.T.A/internal/transport"
	"github.com/GustavoFrossard/P.A.T.A/internal/observability"
)

func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			defer func() {
				if rec := recover(); rec != nil {
					observability.Logger().Error("panic_recovered",
						zap.Any("error", rec),
						zap.String("path", r.URL.Path),
					)

					transport.WriteError(
						w,
						http.StatusInternalServerError,
						"internal_error",
						"internal server error",
					)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
