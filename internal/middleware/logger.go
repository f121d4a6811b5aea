package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Logger logs one line per request. Server errors log at error level,
// client rejections at warn, so failed webhook deliveries and checkout
// conflicts stand out without a separate audit path.
func Logger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := wrapResponseWriter(w)
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			switch {
			case ww.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case ww.status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			attrs := []any{
				slog.Int("status", ww.status),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote", r.RemoteAddr),
				slog.String("duration", time.Since(start).String()),
				slog.String("request_id", chimw.GetReqID(r.Context())),
			}
			// The key itself is client-chosen and may be sensitive, so
			// only its presence is logged.
			if r.Header.Get("Idempotency-Key") != "" {
				attrs = append(attrs, slog.Bool("idempotency_key", true))
			}

			logger.Log(r.Context(), level, "request", attrs...)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
