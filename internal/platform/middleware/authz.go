// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/constants"
	"github.com/taibuivan/agentdesk/internal/platform/ctxutil"
	"github.com/taibuivan/agentdesk/internal/platform/respond"
	"github.com/taibuivan/agentdesk/internal/platform/sec"
)

// # Collaborators

// IdentityResolver turns request headers into a verified identity, or nil
// when the request is anonymous.
type IdentityResolver interface {
	Resolve(ctx context.Context, header http.Header) (*sec.Identity, error)
}

// MembershipLookup returns a user's membership in an organization, or nil.
type MembershipLookup interface {
	LookupMembership(ctx context.Context, userID, orgID string) (*sec.Membership, error)
}

// DecisionObserver receives one call per guard outcome.
type DecisionObserver interface {
	ObserveDecision(gate, outcome string)
}

// Guard outcomes reported to the [DecisionObserver].
const (
	OutcomeAllowed         = "allowed"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeMissingOrg      = "missing_org"
	OutcomeForbidden       = "forbidden"
	OutcomeError           = "error"
)

// Guard rejection messages. They are part of the public HTTP contract.
const (
	MessageUnauthorized  = "Unauthorized"
	MessageOrgIDRequired = "Organization ID is required"
	MessageForbidden     = "Forbidden"
)

// # Guard

// Guard composes session resolution, membership lookup, and the role order
// into reusable request gates.
//
// It holds no per-request state and caches nothing: every decision re-reads
// the stores, so a revoked membership is refused on the very next request.
type Guard struct {
	resolver    IdentityResolver
	memberships MembershipLookup
	observer    DecisionObserver
	logger      *slog.Logger
}

// GuardOption customizes a [Guard].
type GuardOption func(*Guard)

// WithObserver reports every decision to observer.
func WithObserver(observer DecisionObserver) GuardOption {
	return func(guard *Guard) {
		guard.observer = observer
	}
}

// WithGuardLogger sets the logger used for denied decisions.
func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(guard *Guard) {
		guard.logger = logger
	}
}

// NewGuard constructs a [Guard].
func NewGuard(resolver IdentityResolver, memberships MembershipLookup, opts ...GuardOption) *Guard {
	guard := &Guard{
		resolver:    resolver,
		memberships: memberships,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(guard)
	}
	return guard
}

/*
RequireIdentity verifies that the request carries a live session.

Description: An identity already attached by an earlier stage of the same
request is reused; otherwise the resolver is consulted.

Parameters:
  - request: *http.Request

Returns:
  - *sec.Identity: The authenticated principal
  - error: apperr.Unauthorized, or apperr.Internal when the store fails
*/
func (guard *Guard) RequireIdentity(request *http.Request) (*sec.Identity, error) {
	if identity := ctxutil.GetIdentity(request.Context()); identity != nil {
		return identity, nil
	}

	identity, err := guard.resolver.Resolve(request.Context(), request.Header)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if identity == nil {
		return nil, apperr.Unauthorized(MessageUnauthorized)
	}

	return identity, nil
}

/*
RequireOrgRole verifies that the caller holds at least the required role in
the organization the request targets.

Description: Extracts the org id (see [OrgIDFromRequest]), runs the identity
gate, looks up the membership and compares roles. A missing org id is a
BadRequest even for anonymous callers. Both principal values are returned
so handlers never repeat the lookup.

Parameters:
  - request: *http.Request (its body is restored if it had to be read)
  - required: sec.Role

Returns:
  - *sec.Identity: The authenticated principal
  - *sec.Membership: The caller's membership in the target organization
  - error: apperr.Unauthorized, apperr.BadRequest, apperr.Forbidden, or apperr.Internal
*/
func (guard *Guard) RequireOrgRole(request *http.Request, required sec.Role) (*sec.Identity, *sec.Membership, error) {

	// ── 1. Organization ID ────────────────────────────────────────────────
	// A request naming no organization is malformed whether or not it
	// carries a session, so this check precedes the identity gate.
	orgID, err := OrgIDFromRequest(request)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	if orgID == "" {
		return nil, nil, apperr.BadRequest(MessageOrgIDRequired)
	}

	// ── 2. Identity ───────────────────────────────────────────────────────
	identity, err := guard.RequireIdentity(request)
	if err != nil {
		return nil, nil, err
	}

	// ── 3. Membership ─────────────────────────────────────────────────────
	membership, err := guard.memberships.LookupMembership(request.Context(), identity.ID, orgID)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, nil, err
		}
		return nil, nil, apperr.Internal(err)
	}
	if membership == nil {
		return nil, nil, apperr.Forbidden(MessageForbidden)
	}

	// ── 4. Role ───────────────────────────────────────────────────────────
	if !sec.Satisfies(membership.Role, required) {
		return nil, nil, apperr.Forbidden(MessageForbidden)
	}

	return identity, membership, nil
}

// # Middleware Stages

// Authenticated is the identity gate as a middleware stage. It attaches the
// identity to the request context.
func (guard *Guard) Authenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity, err := guard.RequireIdentity(request)
			if err != nil {
				guard.reject(writer, request, "identity", err)
				return
			}

			guard.observe("identity", OutcomeAllowed)
			noteUser(request.Context(), identity.ID)
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithIdentity(request.Context(), identity)))
		})
	}
}

// OrgRole is the organization-role gate as a middleware stage. It attaches
// the identity and the membership to the request context.
func (guard *Guard) OrgRole(required sec.Role) func(http.Handler) http.Handler {
	gate := "org_role:" + required.String()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity, membership, err := guard.RequireOrgRole(request, required)
			if err != nil {
				guard.reject(writer, request, gate, err)
				return
			}

			guard.observe(gate, OutcomeAllowed)
			noteUser(request.Context(), identity.ID)
			noteOrg(request.Context(), membership.OrgID)
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			ctx = ctxutil.WithMembership(ctx, membership)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// reject writes the fixed error response for a failed gate.
func (guard *Guard) reject(writer http.ResponseWriter, request *http.Request, gate string, err error) {
	outcome := OutcomeError
	switch {
	case apperr.HasCode(err, apperr.CodeUnauthorized):
		outcome = OutcomeUnauthenticated
	case apperr.HasCode(err, apperr.CodeBadRequest):
		outcome = OutcomeMissingOrg
	case apperr.HasCode(err, apperr.CodeForbidden):
		outcome = OutcomeForbidden
	}
	guard.observe(gate, outcome)

	if outcome == OutcomeForbidden {
		guard.logger.DebugContext(request.Context(), "guard_denied",
			slog.String("gate", gate),
			slog.String("path", request.URL.Path),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
	}

	respond.Error(writer, request, err)
}

func (guard *Guard) observe(gate, outcome string) {
	if guard.observer != nil {
		guard.observer.ObserveDecision(gate, outcome)
	}
}

// # Organization ID Extraction

/*
OrgIDFromRequest extracts the target organization id.

Sources are tried in a fixed order and the first non-empty value wins:

 1. the "orgId" query parameter
 2. the "X-Org-ID" header
 3. the "orgId" field of a JSON request body

Sources are never merged or cross-checked. A body that is not a JSON object,
or is larger than [constants.MaxOrgBodyBytes], counts as supplying nothing.
Whatever was read of the body is put back so the handler sees it unchanged.

Parameters:
  - request: *http.Request

Returns:
  - string: The org id, or "" when no source supplied one
  - error: Only when reading the body fails
*/
func OrgIDFromRequest(request *http.Request) (string, error) {
	if orgID := strings.TrimSpace(request.URL.Query().Get(constants.QueryOrgID)); orgID != "" {
		return orgID, nil
	}

	if orgID := strings.TrimSpace(request.Header.Get(constants.HeaderOrgID)); orgID != "" {
		return orgID, nil
	}

	return orgIDFromBody(request)
}

func orgIDFromBody(request *http.Request) (string, error) {
	if request.Body == nil || request.Body == http.NoBody {
		return "", nil
	}

	original := request.Body
	buffered, err := io.ReadAll(io.LimitReader(original, constants.MaxOrgBodyBytes+1))
	if err != nil {
		return "", err
	}

	// Oversized bodies are streamed through untouched and not inspected.
	if len(buffered) > constants.MaxOrgBodyBytes {
		request.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(buffered), original), Closer: original}
		return "", nil
	}

	_ = original.Close()
	request.Body = io.NopCloser(bytes.NewReader(buffered))

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(buffered, &payload); err != nil {
		return "", nil
	}

	raw, ok := payload[constants.BodyOrgID]
	if !ok {
		return "", nil
	}

	// Non-string values are treated as absent.
	var orgID string
	if err := json.Unmarshal(raw, &orgID); err != nil {
		return "", nil
	}

	return strings.TrimSpace(orgID), nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
