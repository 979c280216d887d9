package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"gitactivity/internal/logger"
)

// requestLogFormatter sends chi's per-request log lines to the zerolog
// logger.
type requestLogFormatter struct{}

func (requestLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{
		requestID: middleware.GetReqID(r.Context()),
		method:    r.Method,
		path:      r.URL.Path,
		remote:    r.RemoteAddr,
	}
}

type requestLogEntry struct {
	requestID string
	method    string
	path      string
	remote    string
}

func (e *requestLogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	ev := logger.Logger.Info()
	if status >= http.StatusInternalServerError {
		ev = logger.Logger.Warn()
	}
	ev.Str("request_id", e.requestID).
		Str("method", e.method).
		Str("path", e.path).
		Str("remote", e.remote).
		Int("status", status).
		Int("bytes", bytes).
		Dur("elapsed", elapsed).
		Msg("request")
}

func (e *requestLogEntry) Panic(v interface{}, stack []byte) {
	logger.Logger.Error().
		Str("request_id", e.requestID).
		Interface("panic", v).
		Bytes("stack", stack).
		Msg("request panicked")
}
