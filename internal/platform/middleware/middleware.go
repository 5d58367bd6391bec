// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware holds the HTTP chain every AgentDesk request passes through.

Order in the router:

  - [RequestID] tags the request with a correlation id.
  - [StructuredLogger] writes one access entry when the response is done.
  - [RateLimiter] throttles noisy clients by address.
  - [PanicRecovery] turns a crashed handler into a JSON 500.
  - [CORS] answers browser pre-flights for the dashboard origin.

Two gates sit closer to the routes. The [Guard] verifies the session and the
caller's role in the target organization for /api. The [RouteFilter] only
looks at the session cookie and redirects page navigations.
*/
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/agentdesk/internal/platform/constants"
	"github.com/taibuivan/agentdesk/internal/platform/ctxutil"
	"github.com/taibuivan/agentdesk/pkg/uuid"
)

// maxRequestIDLength caps a client supplied correlation id.
const maxRequestIDLength = 64

// # Correlation

// RequestID adopts the caller's X-Request-ID when it is well formed and mints
// a UUIDv7 otherwise. The id is echoed on the response.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			requestID := request.Header.Get(constants.HeaderXRequestID)
			if !acceptableRequestID(requestID) {
				requestID = uuid.New()
			}

			writer.Header().Set(constants.HeaderXRequestID, requestID)
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithRequestID(request.Context(), requestID)))
		})
	}
}

// acceptableRequestID keeps log lines safe from header injection.
func acceptableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, char := range id {
		switch {
		case char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z', char >= '0' && char <= '9':
		case char == '-' || char == '_' || char == '.' || char == ':':
		default:
			return false
		}
	}
	return true
}

// # Access Log

// responseCapture remembers the status a handler wrote.
type responseCapture struct {
	http.ResponseWriter
	status  int
	written bool
}

func (capture *responseCapture) WriteHeader(code int) {
	if !capture.written {
		capture.status = code
		capture.written = true
	}
	capture.ResponseWriter.WriteHeader(code)
}

func (capture *responseCapture) Write(body []byte) (int, error) {
	capture.written = true
	return capture.ResponseWriter.Write(body)
}

// Unwrap lets [http.ResponseController] reach the underlying writer.
func (capture *responseCapture) Unwrap() http.ResponseWriter {
	return capture.ResponseWriter
}

// StructuredLogger stores a request scoped logger in the context and emits
// "http_request_finished" once the handler returns. Client errors log at
// Warn and server errors at Error.
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			started := time.Now()

			requestLogger := logger.With(
				slog.String("request_id", ctxutil.GetRequestID(request.Context())),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", RealIP(request)),
			)

			trail := &accessTrail{}
			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			ctx = context.WithValue(ctx, accessTrailKey{}, trail)

			capture := &responseCapture{ResponseWriter: writer, status: http.StatusOK}
			next.ServeHTTP(capture, request.WithContext(ctx))

			attrs := []any{
				slog.Int("status", capture.status),
				slog.Int64("latency_ms", time.Since(started).Milliseconds()),
				slog.String("user_agent", request.UserAgent()),
			}
			if trail.userID != "" {
				attrs = append(attrs, slog.String("user_id", trail.userID))
			}
			if trail.orgID != "" {
				attrs = append(attrs, slog.String("org_id", trail.orgID))
			}

			requestLogger.Log(ctx, levelFor(capture.status), "http_request_finished", attrs...)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// accessTrail carries facts found by the guard back up to the access log.
type accessTrail struct {
	userID string
	orgID  string
}

type accessTrailKey struct{}

// noteUser records the authenticated user for the access entry.
func noteUser(ctx context.Context, userID string) {
	if trail, ok := ctx.Value(accessTrailKey{}).(*accessTrail); ok {
		trail.userID = userID
	}
}

// noteOrg records the organization the request was authorized against.
func noteOrg(ctx context.Context, orgID string) {
	if trail, ok := ctx.Value(accessTrailKey{}).(*accessTrail); ok {
		trail.orgID = orgID
	}
}
