// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package constants holds the timeouts, limits, header names, and keys shared
// across layers of the AgentDesk API.
package constants

import "time"

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// DefaultSessionCookieName is the cookie that carries the opaque session token.
	DefaultSessionCookieName = "agentdesk.session_token"

	// SessionCookiePath scopes the session cookie to the whole site.
	SessionCookiePath = "/"

	// SessionTokenLength is the byte length of a freshly issued session token.
	SessionTokenLength = 32

	// DefaultSessionTTL is the lifetime of a new session (7 days).
	DefaultSessionTTL = 7 * 24 * time.Hour

	// DefaultSessionUpdateAge is how old a session must be before
	// get-session slides its expiry forward (1 day).
	DefaultSessionUpdateAge = 24 * time.Hour

	// SessionSweepInterval is how often expired PostgreSQL sessions are purged.
	SessionSweepInterval = 15 * time.Minute
)

// # Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"

	// HeaderOrgID carries the organization id for org-scoped API calls.
	HeaderOrgID = "X-Org-ID"
)

// # Organization Scoping

const (
	// QueryOrgID is the query parameter consulted first for the organization id.
	QueryOrgID = "orgId"

	// BodyOrgID is the JSON body field consulted last for the organization id.
	BodyOrgID = "orgId"

	// MaxOrgBodyBytes bounds how much of a request body the guard will buffer
	// while looking for the organization id.
	MaxOrgBodyBytes = 1 << 20
)

// # Navigation

const (
	DefaultLoginPath   = "/login"
	DefaultLandingPath = "/dashboard"
	CallbackURLParam   = "callbackUrl"
)

// # JSON Field Identifiers

const (
	FieldStatus = "status"
	FieldApp    = "app"
	FieldChecks = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSession      = "auth:session:"
	RedisPrefixUserSessions = "auth:user_sessions:"
)
