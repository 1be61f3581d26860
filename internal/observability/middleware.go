package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Middleware records the request metrics and annotates the server span
// for every request. The release path runs in a defer, so active
// connections are decremented and the request is counted even when a
// handler panics past the recovery layer.
func Middleware(inst *Instruments) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()

			inst.ActiveConnections.Add(ctx, 1)

			// The server span is created by the otelhttp wrapper before
			// routing, so it is always present here.
			span := trace.SpanFromContext(ctx)
			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			)

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				duration := time.Since(start)

				// The route pattern is only complete after routing has
				// finished, and the status label must reflect the final
				// response, so both are resolved here rather than at entry.
				route := routeLabel(r)
				status := ww.status

				attrs := metric.WithAttributes(
					attribute.String("method", r.Method),
					attribute.String("route", route),
					attribute.String("status_code", strconv.Itoa(status)),
				)
				inst.RequestsTotal.Add(ctx, 1, attrs)
				inst.RequestDuration.Record(ctx, duration.Seconds(), attrs)
				inst.ActiveConnections.Add(ctx, -1)

				span.SetName(fmt.Sprintf("%s %s", r.Method, route))
				span.SetAttributes(
					attribute.String("http.route", route),
					attribute.Int("http.status_code", status),
					attribute.Float64("http.duration_ms", float64(duration.Milliseconds())),
				)
				if status >= 400 {
					span.SetStatus(codes.Error, http.StatusText(status))
					span.RecordError(fmt.Errorf("HTTP %d: %s", status, http.StatusText(status)))
				} else {
					span.SetStatus(codes.Ok, "")
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// routeLabel resolves the chi route pattern, falling back to the
// literal request path for unmatched routes. The fallback is unbounded
// label cardinality under hostile traffic; kept as a documented
// limitation.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// statusWriter captures the final response status without altering the
// body. WriteHeader is honored once, matching net/http semantics.
type statusWriter struct {
	http.ResponseWriter
	status        int
	headerWritten bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.headerWritten {
		w.status = status
		w.headerWritten = true
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
