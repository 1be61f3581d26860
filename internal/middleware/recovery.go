package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"userhub-backend/pkg/api"
)

// Recovery converts handler panics into a 500 JSON response. The panic
// is recorded on the active span, and the message is redacted when
// redact is true (production).
func Recovery(logger *zap.Logger, redact bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)

					logger.Error("Handler panic",
						zap.String("requestID", GetRequestID(r.Context())),
						zap.String("path", r.URL.Path),
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()),
					)

					span := trace.SpanFromContext(r.Context())
					span.RecordError(err)
					span.AddEvent("panic recovered")

					// If headers are already on the wire there is nothing
					// left to send; the server closes the connection.
					if w.Header().Get("Content-Type") != "" {
						return
					}

					message := "Internal server error"
					if !redact {
						message = err.Error()
					}
					api.Error(w, http.StatusInternalServerError, message)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
