// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/dberr"
	"github.com/taibuivan/agentdesk/internal/platform/postgres"
	"github.com/taibuivan/agentdesk/pkg/uuid"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] over the users and
// accounts tables.
type PostgresUserRepository struct {
	db postgres.DB
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(db postgres.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

/*
Create persists a new user together with its credential account row.

Description: Both inserts run in one transaction so an account can never exist
without the credential that lets its owner sign in.

Parameters:
  - context: context.Context
  - user: *User (ID and timestamps are filled in when empty)

Returns:
  - error: apperr.Conflict on duplicate email, or database errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const insertUser = `
		INSERT INTO users (id, email, name, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	const insertCredential = `
		INSERT INTO accounts (id, user_id, account_id, provider_id, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if user.ID == "" {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	return postgres.InTx(context, repository.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(context, insertUser,
			user.ID,
			user.Email,
			user.Name,
			user.EmailVerified,
			user.CreatedAt,
			user.UpdatedAt,
		); err != nil {
			if dberr.IsUniqueViolation(err) {
				return apperr.Conflict("Email is already registered")
			}
			return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
		}

		if _, err := tx.Exec(context, insertCredential,
			uuid.New(),
			user.ID,
			user.ID,
			CredentialProviderID,
			user.PasswordHash,
			user.CreatedAt,
			user.UpdatedAt,
		); err != nil {
			return fmt.Errorf("postgres_user_repo_create_credential_failed: %w", err)
		}
		return nil
	})
}

/*
FindByID retrieves a user by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated account entity, or nil when absent
  - error: Database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT id, email, name, email_verified, COALESCE(image, ''), created_at, updated_at
		FROM users
		WHERE id = $1`

	user := &User{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.EmailVerified,
		&user.Image,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindByEmail retrieves a user and its password credential by email.

Parameters:
  - context: context.Context
  - email: string (already normalized to lower case)

Returns:
  - *User: Hydrated account entity with PasswordHash, or nil when absent
  - error: Database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT u.id, u.email, u.name, u.email_verified, COALESCE(u.image, ''),
		       COALESCE(a.password, ''), u.created_at, u.updated_at
		FROM users u
		LEFT JOIN accounts a ON a.user_id = u.id AND a.provider_id = $2
		WHERE u.email = $1`

	user := &User{}
	err := repository.db.QueryRow(context, query, email, CredentialProviderID).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.EmailVerified,
		&user.Image,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

// # Session Repository

// PostgresSessionRepository implements [SessionRepository] over the sessions table.
type PostgresSessionRepository struct {
	db postgres.DB
}

// NewSessionRepository creates a new PostgreSQL implementation of the SessionRepository.
func NewSessionRepository(db postgres.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

/*
Create persists a new session row.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Database errors
*/
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO sessions (id, user_id, token_hash, expires_at, ip_address, user_agent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := repository.db.Exec(context, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.ExpiresAt,
		session.IPAddress,
		session.UserAgent,
		session.CreatedAt,
		session.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_session_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByTokenHash returns the session for a token digest.

Description: Expiry is not filtered here; the caller compares ExpiresAt against
its own clock so tests can pin time.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Hydrated session, or nil when absent
  - error: Database errors
*/
func (repository *PostgresSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	const query = `
		SELECT id, user_id, token_hash, expires_at, ip_address, user_agent, created_at, updated_at
		FROM sessions
		WHERE token_hash = $1`

	session := &Session{}
	err := repository.db.QueryRow(context, query, tokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.ExpiresAt,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres_session_repo_find_failed: %w", err)
	}

	return session, nil
}

/*
Extend slides a session's expiry forward.

Parameters:
  - context: context.Context
  - session: *Session
  - expiresAt: time.Time

Returns:
  - error: Database errors
*/
func (repository *PostgresSessionRepository) Extend(context context.Context, session *Session, expiresAt time.Time) error {
	const query = `UPDATE sessions SET expires_at = $2, updated_at = $3 WHERE token_hash = $1`

	now := time.Now().UTC()
	if _, err := repository.db.Exec(context, query, session.TokenHash, expiresAt, now); err != nil {
		return fmt.Errorf("postgres_session_repo_extend_failed: %w", err)
	}

	session.ExpiresAt = expiresAt
	session.UpdatedAt = now
	return nil
}

/*
Delete removes a single session.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - error: Database errors
*/
func (repository *PostgresSessionRepository) Delete(context context.Context, tokenHash string) error {
	const query = `DELETE FROM sessions WHERE token_hash = $1`

	if _, err := repository.db.Exec(context, query, tokenHash); err != nil {
		return fmt.Errorf("postgres_session_repo_delete_failed: %w", err)
	}

	return nil
}

/*
DeleteAllForUser revokes every session of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Database errors
*/
func (repository *PostgresSessionRepository) DeleteAllForUser(context context.Context, userID string) error {
	const query = `DELETE FROM sessions WHERE user_id = $1`

	if _, err := repository.db.Exec(context, query, userID); err != nil {
		return fmt.Errorf("postgres_session_repo_delete_all_failed: %w", err)
	}

	return nil
}

/*
DeleteExpired physically removes sessions whose expiry has passed.

Parameters:
  - context: context.Context
  - now: time.Time

Returns:
  - int64: Number of rows removed
  - error: Database errors
*/
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= $1`

	tag, err := repository.db.Exec(context, query, now)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_repo_delete_expired_failed: %w", err)
	}

	return tag.RowsAffected(), nil
}
