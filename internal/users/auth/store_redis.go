// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/agentdesk/internal/platform/constants"
)

// # Redis Session Repository

// RedisSessionRepository implements [SessionRepository] using Redis.
//
// Each session is a JSON value under auth:session:<digest> whose TTL equals
// the remaining lifetime, so Redis evicts expired sessions on its own. A set
// per user under auth:user_sessions:<userID> tracks digests for bulk revocation.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a new Redis-backed SessionRepository.
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

// sessionRecord is the stored shape; unlike [Session] it keeps the digest.
type sessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"tokenHash"`
	ExpiresAt time.Time `json:"expiresAt"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}

func userSessionsKey(userID string) string {
	return constants.RedisPrefixUserSessions + userID
}

/*
Create stores a session with a TTL matching its remaining lifetime.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Storage failures
*/
func (repository *RedisSessionRepository) Create(context context.Context, session *Session) error {
	return repository.write(context, session, "redis_session_create_failed")
}

/*
FindByTokenHash loads a session by digest.

Description: A missing key means the session never existed or Redis already
evicted it; both return (nil, nil).

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Decoded session, or nil when absent
  - error: Storage or decoding failures
*/
func (repository *RedisSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	payload, err := repository.client.Get(context, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("redis_session_decode_failed: %w", err)
	}

	return &Session{
		ID:        record.ID,
		UserID:    record.UserID,
		TokenHash: record.TokenHash,
		ExpiresAt: record.ExpiresAt,
		IPAddress: record.IPAddress,
		UserAgent: record.UserAgent,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

/*
Extend rewrites the session with a later expiry and a refreshed TTL.

Description: The write only lands while the key still exists, so a sign-out
racing the slide is never undone. Extending a deleted session is a no-op.

Parameters:
  - context: context.Context
  - session: *Session
  - expiresAt: time.Time

Returns:
  - error: Storage failures
*/
func (repository *RedisSessionRepository) Extend(context context.Context, session *Session, expiresAt time.Time) error {
	session.ExpiresAt = expiresAt
	session.UpdatedAt = time.Now().UTC()

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return repository.Delete(context, session.TokenHash)
	}

	payload, err := encodeSession(session)
	if err != nil {
		return fmt.Errorf("redis_session_extend_failed: %w", err)
	}

	stored, err := repository.client.SetXX(context, sessionKey(session.TokenHash), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis_session_extend_failed: %w", err)
	}
	if !stored {
		return nil
	}

	pipe := repository.client.Pipeline()
	refreshIndexTTL(context, pipe, session.UserID, ttl)
	if _, err := pipe.Exec(context); err != nil {
		return fmt.Errorf("redis_session_extend_failed: %w", err)
	}

	return nil
}

/*
Delete removes one session and its entry in the owner's index.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - error: Storage failures
*/
func (repository *RedisSessionRepository) Delete(context context.Context, tokenHash string) error {
	session, err := repository.FindByTokenHash(context, tokenHash)
	if err != nil {
		return err
	}

	pipe := repository.client.TxPipeline()
	pipe.Del(context, sessionKey(tokenHash))
	if session != nil {
		pipe.SRem(context, userSessionsKey(session.UserID), tokenHash)
	}

	if _, err := pipe.Exec(context); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}

	return nil
}

/*
DeleteAllForUser revokes every session in the user's index.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Storage failures
*/
func (repository *RedisSessionRepository) DeleteAllForUser(context context.Context, userID string) error {
	indexKey := userSessionsKey(userID)

	digests, err := repository.client.SMembers(context, indexKey).Result()
	if err != nil {
		return fmt.Errorf("redis_session_list_failed: %w", err)
	}

	keys := make([]string, 0, len(digests)+1)
	for _, digest := range digests {
		keys = append(keys, sessionKey(digest))
	}
	keys = append(keys, indexKey)

	if err := repository.client.Del(context, keys...).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_all_failed: %w", err)
	}

	return nil
}

// write stores a new session and indexes it under its owner in one transaction.
func (repository *RedisSessionRepository) write(context context.Context, session *Session, failure string) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return repository.Delete(context, session.TokenHash)
	}

	payload, err := encodeSession(session)
	if err != nil {
		return fmt.Errorf("%s: %w", failure, err)
	}

	pipe := repository.client.TxPipeline()
	pipe.Set(context, sessionKey(session.TokenHash), payload, ttl)
	pipe.SAdd(context, userSessionsKey(session.UserID), session.TokenHash)
	refreshIndexTTL(context, pipe, session.UserID, ttl)

	if _, err := pipe.Exec(context); err != nil {
		return fmt.Errorf("%s: %w", failure, err)
	}

	return nil
}

// refreshIndexTTL keeps the owner's index alive as long as its longest
// session. NX covers a fresh set with no expiry; GT only ever lengthens it.
func refreshIndexTTL(context context.Context, pipe redis.Pipeliner, userID string, ttl time.Duration) {
	indexKey := userSessionsKey(userID)
	pipe.ExpireNX(context, indexKey, ttl)
	pipe.ExpireGT(context, indexKey, ttl)
}

func encodeSession(session *Session) ([]byte, error) {
	return json.Marshal(sessionRecord{
		ID:        session.ID,
		UserID:    session.UserID,
		TokenHash: session.TokenHash,
		ExpiresAt: session.ExpiresAt,
		IPAddress: session.IPAddress,
		UserAgent: session.UserAgent,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	})
}
