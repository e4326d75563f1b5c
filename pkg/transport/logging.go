package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/debug"
)

const category = "transport"

// logRequest emits the outgoing request with sensitive headers redacted.
// The body is never logged: login forms carry passwords.
func logRequest(kind api.Kind, r *http.Request) {
	if !debug.Enabled(category) {
		return
	}
	debug.Trace(category, "panel request",
		"backend", kind,
		"method", r.Method,
		"url", r.URL.Redacted(),
		"headers", debug.SafeHeaders(r.Header),
	)
}

// traceBody emits a response body at TRACE level with token fields masked.
func traceBody(kind api.Kind, status int, body []byte) {
	if !debug.TraceIsEnabled(category) {
		return
	}
	debug.Body(category, string(kind)+" response "+http.StatusText(status), body)
}

func logSuccess(kind api.Kind, req *Request, resp *Response, d time.Duration) {
	debug.Log(category, "panel call completed",
		"backend", kind,
		"op", req.Op,
		"method", req.Method,
		"path", req.Path,
		"status", resp.Status,
		"request_id", resp.RequestID,
		"duration", d,
	)
}

// logFailure logs transport-level failures as warnings. Authentication and
// business outcomes belong to the caller and go to the debug log only.
func logFailure(ctx context.Context, kind api.Kind, req *Request, err *api.APIError, d time.Duration) {
	attrs := []slog.Attr{
		slog.String("backend", string(kind)),
		slog.String("op", req.Op),
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.String("error_type", string(err.Type)),
		slog.Duration("duration", d),
		slog.String("error", err.Error()),
	}
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}

	if err.Retryable() {
		slog.LogAttrs(ctx, slog.LevelWarn, "panel call failed", attrs...)
		return
	}
	if debug.Enabled(category) {
		slog.LogAttrs(ctx, slog.LevelDebug, "panel call failed", append(attrs, slog.String("debug", category))...)
	}
}

func logRetry(kind api.Kind, req *Request, reqID string, err error, wait time.Duration) {
	debug.Log(category, "retrying panel call",
		"backend", kind,
		"op", req.Op,
		"request_id", reqID,
		"wait", wait,
		"error", err.Error(),
	)
}
