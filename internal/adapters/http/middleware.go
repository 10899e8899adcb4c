package httpadapter

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/PabloGalante/liora-api/internal/domain"
	"github.com/PabloGalante/liora-api/internal/observability"
)

// UserIDHeader carries the caller's opaque identity. It is not authentication.
const UserIDHeader = "X-User-ID"

type ctxKey int

const ctxKeyUserID ctxKey = iota

// withIdentity resolves the caller id from UserIDHeader, defaulting to guest.
func withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := domain.UserID(strings.TrimSpace(r.Header.Get(UserIDHeader)))
		if id == "" {
			id = domain.GuestUserID
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, id)
		ctx = observability.WithUserID(ctx, string(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFrom(ctx context.Context) domain.UserID {
	if id, ok := ctx.Value(ctxKeyUserID).(domain.UserID); ok && id != "" {
		return id
	}
	return domain.GuestUserID
}

// RequestIDHeader echoes the request id back to the client.
const RequestIDHeader = "X-Request-ID"

// withRequestID copies chi's request id into the logging context and the
// response headers.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := chimiddleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set(RequestIDHeader, reqID)
			r = r.WithContext(observability.WithRequestID(r.Context(), reqID))
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging logs every request and records HTTP metrics.
func withLogging(metrics *observability.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)

			if metrics != nil {
				metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
				metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
			}

			observability.LoggerFromContext(r.Context()).Info("http request",
				"method", r.Method,
				"route", route,
				"status", status,
				"elapsed_ms", elapsed.Milliseconds())
		})
	}
}
