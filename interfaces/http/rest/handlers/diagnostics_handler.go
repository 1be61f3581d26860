package handlers

import (
	"math"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"userhub-backend/pkg/api"
)

// DiagnosticsHandler serves the endpoints used to exercise the
// telemetry pipeline: a deliberate failure and a CPU load simulation.
type DiagnosticsHandler struct {
	logger        *zap.Logger
	maxIterations int
}

// NewDiagnosticsHandler creates a diagnostics handler. maxIterations
// caps the load-test loop.
func NewDiagnosticsHandler(logger *zap.Logger, maxIterations int) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		logger:        logger,
		maxIterations: maxIterations,
	}
}

// Error handles GET /error. It panics on purpose so the whole failure
// path is exercised: recovery, span error status, metrics labels, and
// active-connection release.
func (h *DiagnosticsHandler) Error(w http.ResponseWriter, r *http.Request) {
	span := trace.SpanFromContext(r.Context())
	span.AddEvent("intentional failure triggered")

	panic("intentional error for telemetry testing")
}

type loadTestResponse struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	Iterations int     `json:"iterations"`
	Result     float64 `json:"result"`
}

// LoadTest handles GET /load-test. The loop is bounded by the
// configured iteration cap and aborts early when the request context is
// canceled, so latency stays bounded.
func (h *DiagnosticsHandler) LoadTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)

	var result float64
	iterations := 0
	for ; iterations < h.maxIterations; iterations++ {
		if iterations%10000 == 0 && ctx.Err() != nil {
			span.AddEvent("load test canceled", trace.WithAttributes(
				attribute.Int("iterations.completed", iterations),
			))
			break
		}
		result += math.Sqrt(float64(iterations))
	}

	span.SetAttributes(attribute.Int("load_test.iterations", iterations))

	h.logger.Debug("Load test finished",
		zap.Int("iterations", iterations),
		zap.Float64("result", result),
	)

	api.JSON(w, http.StatusOK, loadTestResponse{
		Success:    true,
		Message:    "Load test completed",
		Iterations: iterations,
		Result:     result,
	})
}
