package httputil

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/petspot/petspot-backend/pkg/errors"
	"github.com/petspot/petspot-backend/pkg/logger"
)

// RequestIDHeader is echoed back on every response
const RequestIDHeader = "X-Request-ID"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

// RequestID reuses the caller's X-Request-ID or mints a new one
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// GetRequestID returns the id stored by RequestID, or ""
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// LoggerFrom returns the request-scoped logger installed by Logger,
// falling back to fallback when the request did not pass through it.
func LoggerFrom(ctx context.Context, fallback *logger.Logger) *logger.Logger {
	if l, ok := ctx.Value(loggerKey).(*logger.Logger); ok {
		return l
	}
	return fallback
}

// Logger installs a request-scoped logger and writes one access line per request.
// Server errors are logged at error level, client errors at warn.
func Logger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			reqLog := log.WithRequestID(GetRequestID(r.Context()))
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), loggerKey, reqLog)))

			status := sw.status()
			ev := reqLog.Info()
			switch {
			case status >= http.StatusInternalServerError:
				ev = reqLog.Error()
			case status >= http.StatusBadRequest:
				ev = reqLog.Warn()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int64("bytes", sw.written).
				Dur("duration", time.Since(started)).
				Msg("request handled")
		})
	}
}

// Recoverer turns a handler panic into a 500 envelope
func Recoverer(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				LoggerFrom(r.Context(), log).Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("handler panicked")
				Error(w, errors.Internal("an unexpected error occurred"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	code    int
	written int64
}

func (w *statusWriter) WriteHeader(code int) {
	if w.code == 0 {
		w.code = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.code == 0 {
		w.code = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

func (w *statusWriter) status() int {
	if w.code == 0 {
		return http.StatusOK
	}
	return w.code
}
