// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/constants"
	"github.com/taibuivan/agentdesk/internal/platform/sec"
	"github.com/taibuivan/agentdesk/pkg/uuid"
)

// # Contracts & Types

// SessionPolicy controls how long sessions live and when they slide.
type SessionPolicy struct {
	// TTL is the lifetime granted at sign-in and on each slide.
	TTL time.Duration
	// UpdateAge is how old a session must be before reading it extends it.
	UpdateAge time.Duration
}

// DefaultSessionPolicy returns the 7-day lifetime with a daily slide.
func DefaultSessionPolicy() SessionPolicy {
	return SessionPolicy{
		TTL:       constants.DefaultSessionTTL,
		UpdateAge: constants.DefaultSessionUpdateAge,
	}
}

// Service implements the account and session use cases behind /api/auth.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, sign-in, or
// session issuance must be reviewed by the security team.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	policy            SessionPolicy
	now               func() time.Time
}

// ServiceOption customizes a [Service].
type ServiceOption func(*Service)

// WithServiceClock overrides the time source used for issuing and sliding sessions.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(service *Service) {
		service.now = now
	}
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, sessionRepo SessionRepository, policy SessionPolicy, opts ...ServiceOption) *Service {
	if policy.TTL <= 0 {
		policy.TTL = constants.DefaultSessionTTL
	}
	if policy.UpdateAge <= 0 {
		policy.UpdateAge = constants.DefaultSessionUpdateAge
	}

	service := &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		policy:            policy,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}

	return service
}

// SignedIn is the result of a successful sign-up or sign-in.
type SignedIn struct {
	// Token is the raw session token. It is returned exactly once and only
	// its digest is persisted.
	Token   string
	Session *Session
	User    *User
}

// ClientInfo carries the creation metadata recorded on a session.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// # Registration Flow

// SignUpInput holds the data required to enroll a new account.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

/*
SignUp creates an account with an email/password credential and signs it in.

Parameters:
  - context: context.Context
  - input: SignUpInput
  - client: ClientInfo

Returns:
  - *SignedIn: The new account and its first session
  - error: Conflict (email exists) or storage errors
*/
func (service *Service) SignUp(context context.Context, input SignUpInput, client ClientInfo) (*SignedIn, error) {
	email := normalizeEmail(input.Email)

	existing, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_sign_up_lookup_failed: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hashedPassword,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	return service.issue(context, user, client)
}

// # Authentication Flow

/*
SignIn verifies an email/password pair and issues a new session.

Description: Unknown email and wrong password produce the same error so the
endpoint cannot be used to enumerate accounts.

Parameters:
  - context: context.Context
  - email: string
  - password: string
  - client: ClientInfo

Returns:
  - *SignedIn: The account and its new session
  - error: Unauthorized or storage errors
*/
func (service *Service) SignIn(context context.Context, email, password string, client ClientInfo) (*SignedIn, error) {
	user, err := service.userRepository.FindByEmail(context, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("auth_service_sign_in_lookup_failed: %w", err)
	}

	if user == nil || user.PasswordHash == "" || !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	return service.issue(context, user, client)
}

/*
SignOut destroys the session behind a raw token.

Description: Signing out an unknown or already expired token succeeds, so the
operation is idempotent.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Storage errors
*/
func (service *Service) SignOut(context context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := service.sessionRepository.Delete(context, sec.HashToken(token)); err != nil {
		return fmt.Errorf("auth_service_sign_out_failed: %w", err)
	}

	return nil
}

/*
RevokeAll signs a user out of every device.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Storage errors
*/
func (service *Service) RevokeAll(context context.Context, userID string) error {
	if err := service.sessionRepository.DeleteAllForUser(context, userID); err != nil {
		return fmt.Errorf("auth_service_revoke_all_failed: %w", err)
	}
	return nil
}

// # Session Management

/*
CurrentSession returns the live session and account for a raw token.

Description: Unlike [Resolver.Resolve] this is the one read that writes: once
a session is older than the update age its expiry slides forward by a full
TTL, keeping active users signed in.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Session: The live session, or nil when anonymous
  - *User: The owning account, or nil when anonymous
  - error: Storage errors
*/
func (service *Service) CurrentSession(context context.Context, token string) (*Session, *User, error) {
	if token == "" {
		return nil, nil, nil
	}

	session, err := service.sessionRepository.FindByTokenHash(context, sec.HashToken(token))
	if err != nil {
		return nil, nil, fmt.Errorf("auth_service_session_lookup_failed: %w", err)
	}

	now := service.now()
	if session == nil || session.Expired(now) {
		return nil, nil, nil
	}

	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("auth_service_session_user_failed: %w", err)
	}
	if user == nil {
		return nil, nil, nil
	}

	// Slide once per update window: the session was issued (or last slid)
	// TTL before its current expiry.
	issuedAt := session.ExpiresAt.Add(-service.policy.TTL)
	if now.Sub(issuedAt) >= service.policy.UpdateAge {
		if err := service.sessionRepository.Extend(context, session, now.Add(service.policy.TTL)); err != nil {
			return nil, nil, fmt.Errorf("auth_service_session_extend_failed: %w", err)
		}
	}

	return session, user, nil
}

// issue mints a token, persists its digest, and returns the raw value.
func (service *Service) issue(context context.Context, user *User, client ClientInfo) (*SignedIn, error) {
	token, err := sec.GenerateSecureToken(constants.SessionTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_failed: %w", err)
	}

	now := service.now().UTC()
	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(token),
		ExpiresAt: now.Add(service.policy.TTL),
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &SignedIn{Token: token, Session: session, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
