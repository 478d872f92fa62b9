// Package middleware provides HTTP handler middleware for the read-only
// cluster status server.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/slurmsim/slurmsim/pkg/logging"
)

// Middleware wraps an http.Handler with cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares so the first one runs outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// statusRecorder captures the response status code for logging, since
// http.ResponseWriter doesn't expose it after WriteHeader.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// WithLogging logs each request's method, path, status, and duration.
func WithLogging(logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			reqLogger := logging.LogAPICall(logger, r.Method, r.URL.Path)
			reqLogger.Debug("handling request")

			next.ServeHTTP(rec, r)

			reqLogger.Info("request completed",
				"status_code", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// WithRecover converts a panic in a handler into a 500 response instead of
// crashing the server.
func WithRecover(logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic handling request", "panic", rec, "path", r.URL.Path)
					http.Error(w, "internal error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type contextKey string

// RequestIDKey is the context key WithRequestID stores the generated ID
// under.
const RequestIDKey contextKey = "request_id"

// WithRequestID stamps each request with an ID from generator, both as a
// response header and in the request context.
func WithRequestID(generator func() string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := generator()
			w.Header().Set("X-Request-ID", id)
			ctx := context.WithValue(r.Context(), RequestIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
