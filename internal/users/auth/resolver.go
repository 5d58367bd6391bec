// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/agentdesk/internal/platform/constants"
	"github.com/taibuivan/agentdesk/internal/platform/sec"
)

// # Session Resolution

// Resolver turns the credential carried by a request into an [sec.Identity].
//
// It is read-only: resolving never extends or deletes a session. Expired and
// unknown tokens are both reported as anonymous (nil, nil); only storage
// failures surface as errors.
type Resolver struct {
	users      UserRepository
	sessions   SessionRepository
	cookieName string
	now        func() time.Time
}

// ResolverOption customizes a [Resolver].
type ResolverOption func(*Resolver)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) ResolverOption {
	return func(resolver *Resolver) {
		resolver.now = now
	}
}

// NewResolver constructs a [Resolver] reading the named session cookie.
func NewResolver(users UserRepository, sessions SessionRepository, cookieName string, opts ...ResolverOption) *Resolver {
	if cookieName == "" {
		cookieName = constants.DefaultSessionCookieName
	}

	resolver := &Resolver{
		users:      users,
		sessions:   sessions,
		cookieName: cookieName,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(resolver)
	}

	return resolver
}

// CookieName returns the cookie the resolver reads the token from.
func (resolver *Resolver) CookieName() string {
	return resolver.cookieName
}

/*
Resolve looks up the session behind the request headers.

Description: The token is read from the session cookie, falling back to an
"Authorization: Bearer" header for non-browser clients. Its digest is looked
up in the session store and the owning account is loaded.

Parameters:
  - ctx: context.Context (cancelling it abandons pending lookups)
  - header: http.Header of the inbound request

Returns:
  - *sec.Identity: The authenticated principal, or nil when anonymous
  - error: Storage failures only
*/
func (resolver *Resolver) Resolve(ctx context.Context, header http.Header) (*sec.Identity, error) {
	token := TokenFromHeader(header, resolver.cookieName)
	if token == "" {
		return nil, nil
	}

	session, err := resolver.sessions.FindByTokenHash(ctx, sec.HashToken(token))
	if err != nil {
		return nil, fmt.Errorf("auth_resolver_session_lookup_failed: %w", err)
	}
	if session == nil || session.Expired(resolver.now()) {
		return nil, nil
	}

	user, err := resolver.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("auth_resolver_user_lookup_failed: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	return user.Identity(), nil
}

// TokenFromHeader extracts the raw session token from a cookie or bearer header.
// Malformed values yield an empty string.
func TokenFromHeader(header http.Header, cookieName string) string {
	probe := &http.Request{Header: header}
	if cookie, err := probe.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authorization := header.Get(constants.HeaderAuthorization)
	if scheme, token, found := strings.Cut(authorization, " "); found && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	return ""
}
