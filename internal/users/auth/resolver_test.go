// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/agentdesk/internal/platform/sec"
	"github.com/taibuivan/agentdesk/internal/users/auth"
)

const cookieName = "agentdesk.session_token"

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func cookieHeader(token string) http.Header {
	header := http.Header{}
	header.Set("Cookie", cookieName+"="+token)
	return header
}

func seedResolver(t *testing.T, expiresAt time.Time) (*auth.Resolver, *memoryUsers, *memorySessions) {
	t.Helper()

	users := newMemoryUsers(&auth.User{ID: "user-1", Email: "ada@example.com", Name: "Ada", EmailVerified: true})
	sessions := newMemorySessions()
	require.NoError(t, sessions.Create(context.Background(), &auth.Session{
		ID:        "s-1",
		UserID:    "user-1",
		TokenHash: sec.HashToken("live-token"),
		ExpiresAt: expiresAt,
	}))

	resolver := auth.NewResolver(users, sessions, cookieName, auth.WithClock(func() time.Time { return fixedNow }))
	return resolver, users, sessions
}

func TestResolver_ValidCookie(t *testing.T) {
	resolver, _, _ := seedResolver(t, fixedNow.Add(time.Hour))

	identity, err := resolver.Resolve(context.Background(), cookieHeader("live-token"))
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, &sec.Identity{ID: "user-1", Email: "ada@example.com", Name: "Ada", EmailVerified: true}, identity)
}

func TestResolver_BearerFallback(t *testing.T) {
	resolver, _, _ := seedResolver(t, fixedNow.Add(time.Hour))

	header := http.Header{}
	header.Set("Authorization", "Bearer live-token")

	identity, err := resolver.Resolve(context.Background(), header)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "user-1", identity.ID)
}

func TestResolver_Anonymous(t *testing.T) {
	tests := []struct {
		name      string
		header    http.Header
		expiresAt time.Time
	}{
		{"no credential", http.Header{}, fixedNow.Add(time.Hour)},
		{"unknown token", cookieHeader("forged"), fixedNow.Add(time.Hour)},
		{"expired session", cookieHeader("live-token"), fixedNow.Add(-time.Second)},
		{"expiry equals now", cookieHeader("live-token"), fixedNow},
		{"malformed authorization", http.Header{"Authorization": []string{"Basic"}}, fixedNow.Add(time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, _, _ := seedResolver(t, tt.expiresAt)

			identity, err := resolver.Resolve(context.Background(), tt.header)
			assert.NoError(t, err)
			assert.Nil(t, identity)
		})
	}
}

func TestResolver_DeletedUserIsAnonymous(t *testing.T) {
	resolver, users, _ := seedResolver(t, fixedNow.Add(time.Hour))
	delete(users.byID, "user-1")

	identity, err := resolver.Resolve(context.Background(), cookieHeader("live-token"))
	assert.NoError(t, err)
	assert.Nil(t, identity)
}

func TestResolver_StoreFailureSurfaces(t *testing.T) {
	resolver, _, sessions := seedResolver(t, fixedNow.Add(time.Hour))
	sessions.err = errors.New("redis: connection refused")

	identity, err := resolver.Resolve(context.Background(), cookieHeader("live-token"))
	assert.Error(t, err)
	assert.Nil(t, identity)
}

func TestResolver_DoesNotSlideExpiry(t *testing.T) {
	expiresAt := fixedNow.Add(time.Hour)
	resolver, _, sessions := seedResolver(t, expiresAt)

	_, err := resolver.Resolve(context.Background(), cookieHeader("live-token"))
	require.NoError(t, err)

	stored, err := sessions.FindByTokenHash(context.Background(), sec.HashToken("live-token"))
	require.NoError(t, err)
	assert.Equal(t, expiresAt, stored.ExpiresAt)
}

func TestTokenFromHeader_CookieWinsOverBearer(t *testing.T) {
	header := cookieHeader("from-cookie")
	header.Set("Authorization", "Bearer from-header")

	assert.Equal(t, "from-cookie", auth.TokenFromHeader(header, cookieName))
	assert.Equal(t, "from-header", auth.TokenFromHeader(header, "other-cookie"))
}
