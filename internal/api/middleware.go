package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"

	apperrors "scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/common/metrics"
	"scheme-eligibility/internal/common/observability"
)

// recovery turns a panic into a 500 with the standard error body.
func recovery(log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic in handler", map[string]interface{}{
						"requestId": chimiddleware.GetReqID(r.Context()),
						"path":      r.URL.Path,
						"panic":     fmt.Sprint(rec),
					})
					writeError(w, apperrors.NewInternalError(fmt.Errorf("panic: %v", rec)), nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger traces each request, observes its latency by route pattern
// and logs the outcome.
func requestLogger(log Logger, obs *observability.Observability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := obs.StartSpan(r.Context(), "http "+r.Method,
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			)
			defer span.End()

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			duration := time.Since(start)
			span.SetAttributes(attribute.Int("http.status_code", status))
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(duration.Seconds())

			fields := map[string]interface{}{
				"requestId":  chimiddleware.GetReqID(r.Context()),
				"method":     r.Method,
				"route":      route,
				"status":     status,
				"durationMs": duration.Milliseconds(),
			}
			if status >= http.StatusInternalServerError {
				log.Error("request failed", fields)
				return
			}
			log.Info("request handled", fields)
		})
	}
}
