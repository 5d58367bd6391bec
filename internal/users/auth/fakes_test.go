// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/agentdesk/internal/users/auth"
)

// memoryUsers is an in-memory UserRepository.
type memoryUsers struct {
	mu    sync.Mutex
	byID  map[string]*auth.User
	err   error
	calls int
}

func newMemoryUsers(users ...*auth.User) *memoryUsers {
	store := &memoryUsers{byID: map[string]*auth.User{}}
	for _, user := range users {
		store.byID[user.ID] = user
	}
	return store
}

func (store *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.calls++
	if store.err != nil {
		return nil, store.err
	}
	return store.byID[id], nil
}

func (store *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return nil, store.err
	}
	for _, user := range store.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (store *memoryUsers) Create(_ context.Context, user *auth.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.byID[user.ID] = user
	return nil
}

// memorySessions is an in-memory SessionRepository.
type memorySessions struct {
	mu     sync.Mutex
	byHash map[string]*auth.Session
	err    error
}

func newMemorySessions() *memorySessions {
	return &memorySessions{byHash: map[string]*auth.Session{}}
}

func (store *memorySessions) Create(_ context.Context, session *auth.Session) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	copied := *session
	store.byHash[session.TokenHash] = &copied
	return nil
}

func (store *memorySessions) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return nil, store.err
	}
	session, ok := store.byHash[tokenHash]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (store *memorySessions) Extend(_ context.Context, session *auth.Session, expiresAt time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	session.ExpiresAt = expiresAt
	if stored, ok := store.byHash[session.TokenHash]; ok {
		stored.ExpiresAt = expiresAt
	}
	return nil
}

func (store *memorySessions) Delete(_ context.Context, tokenHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.byHash, tokenHash)
	return nil
}

func (store *memorySessions) DeleteAllForUser(_ context.Context, userID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for hash, session := range store.byHash {
		if session.UserID == userID {
			delete(store.byHash, hash)
		}
	}
	return nil
}

func (store *memorySessions) count() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.byHash)
}

func (store *memorySessions) all() []auth.Session {
	store.mu.Lock()
	defer store.mu.Unlock()
	sessions := make([]auth.Session, 0, len(store.byHash))
	for _, session := range store.byHash {
		sessions = append(sessions, *session)
	}
	return sessions
}
