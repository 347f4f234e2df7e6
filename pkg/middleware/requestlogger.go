package middleware

import (
	"log/slog"
	"net/http"

	"github.com/rodrigo-augusto/customer-api/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context. It carries the
// correlation and trace ids plus the request method and path, so a service
// log line such as "favorite product rejected" can be tied to its request.
// Handlers and services read it back with logger.FromContext.
//
// Mount it after Tracing and RequestLogging.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.WithContext(ctx, base).With(
				slog.String("http_method", r.Method),
				slog.String("http_path", r.URL.Path),
			)
			next.ServeHTTP(w, r.WithContext(logger.NewContext(ctx, l)))
		})
	}
}
