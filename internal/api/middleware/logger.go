package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const logAttrsKey ctxKey = 2

// logAttrs is filled in by downstream middleware so the access log can
// carry fields that are only known later in the chain.
type logAttrs struct {
	userID string
}

func logAttrsFrom(ctx context.Context) *logAttrs {
	la, _ := ctx.Value(logAttrsKey).(*logAttrs)
	return la
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			la := &logAttrs{}
			r = r.WithContext(context.WithValue(r.Context(), logAttrsKey, la))

			defer func() {
				requestID := GetRequestID(r.Context())
				duration := time.Since(start)

				attrs := []any{
					slog.String("request_id", requestID),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", wrapped.status),
					slog.Duration("duration", duration),
					slog.String("remote_addr", r.RemoteAddr),
					slog.String("user_agent", r.UserAgent()),
				}
				if la.userID != "" {
					attrs = append(attrs, slog.String("user_id", la.userID))
				}

				logger.Info("request completed", attrs...)
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}
