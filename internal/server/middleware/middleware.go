// Package middleware wraps the daemon's HTTP handlers with request ids,
// access logging and panic recovery.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

const (
	// RequestIDHeader carries the request id. An incoming value is kept.
	RequestIDHeader = "X-Request-ID"
	// Forges send a unique id per webhook delivery in one of these.
	githubDeliveryHeader = "X-GitHub-Delivery"
	giteaDeliveryHeader  = "X-Gitea-Delivery"
)

type requestIDKey struct{}

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// quietPaths are polled by probes and scrapers and logged at debug level.
var quietPaths = map[string]bool{"/healthz": true, "/metrics": true}

// Chain wraps next so every request gets an id, an access log line and a
// JSON 500 instead of a dropped connection when a handler panics.
func Chain(logger *slog.Logger, adapter *ferrors.HTTPErrorAdapter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				if p := recover(); p != nil {
					logger.Error("HTTP handler panic",
						slog.Any("panic", p),
						slog.String("request_id", id),
						logfields.Method(r.Method),
						logfields.Path(r.URL.Path))
					adapter.WriteErrorResponse(rec, r, ferrors.InternalError("internal server error").
						WithContext("request_id", id).
						Build())
				}
				logRequest(logger, r, rec, id, time.Since(start))
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

func logRequest(logger *slog.Logger, r *http.Request, rec *recorder, id string, elapsed time.Duration) {
	level := slog.LevelInfo
	if quietPaths[r.URL.Path] {
		level = slog.LevelDebug
	}
	attrs := []slog.Attr{
		slog.String("request_id", id),
		logfields.Method(r.Method),
		logfields.Path(r.URL.Path),
		logfields.Status(rec.status),
		slog.Int64("bytes", rec.bytes),
		logfields.Duration(elapsed),
		logfields.UserAgent(r.UserAgent()),
		logfields.RemoteAddr(r.RemoteAddr),
	}
	for _, h := range []string{githubDeliveryHeader, giteaDeliveryHeader} {
		if d := r.Header.Get(h); d != "" {
			attrs = append(attrs, slog.String("delivery", d))
			break
		}
	}
	logger.LogAttrs(r.Context(), level, "HTTP request", attrs...)
}

// recorder captures the status code and body size for the access log.
type recorder struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (rw *recorder) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.wroteHeader = true
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}
