// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the identity and session layer of AgentDesk.

It owns user accounts, password credentials and opaque session tokens, and it
exposes the [Resolver] that turns an incoming request's cookie into a
[sec.Identity] for the authorization guard.

# Architecture

Entities defined here carry no transport concerns. Persistence is hidden
behind [UserRepository] and [SessionRepository] so sessions can live in
PostgreSQL or Redis without the rest of the system noticing.
*/
package auth

import (
	"time"

	"github.com/taibuivan/agentdesk/internal/platform/sec"
)

// # Domain Entities

// User represents a registered AgentDesk account.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	EmailVerified bool      `json:"email_verified"`
	Image         string    `json:"image,omitempty"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Identity projects the account onto the principal handed to the guard.
func (user *User) Identity() *sec.Identity {
	return &sec.Identity{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		EmailVerified: user.EmailVerified,
	}
}

// Session is a server-side record of an issued session token.
//
// Only the SHA-256 digest of the token is stored; the raw value lives in the
// client's cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the session is no longer valid at now.
func (session *Session) Expired(now time.Time) bool {
	return !now.Before(session.ExpiresAt)
}

// # Field Identifiers

const (
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldName     = "name"
)
