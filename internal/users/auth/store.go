// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity, or nil when no account matches
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email, including its
		password credential.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity, or nil when no account matches
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user and its password credential atomically.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on duplicate email, or persistence failures
	*/
	Create(context context.Context, user *User) error
}

// # Session Data Access

// SessionRepository defines the data access contract for session tokens.
//
// Implementations key sessions by the token digest, never the raw token.
type SessionRepository interface {

	/*
		Create persists a new session.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the session matching the digest.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Session: Hydrated entity, or nil when no session matches
		  - error: Storage failures
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	/*
		Extend moves the expiry of a session forward.

		Parameters:
		  - context: context.Context
		  - session: *Session (TokenHash identifies the row)
		  - expiresAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	Extend(context context.Context, session *Session, expiresAt time.Time) error

	/*
		Delete removes the session matching the digest. Deleting an unknown
		session is not an error.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, tokenHash string) error

	/*
		DeleteAllForUser revokes every session belonging to userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteAllForUser(context context.Context, userID string) error
}
