// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package org_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/agentdesk/internal/org"
	"github.com/taibuivan/agentdesk/internal/platform/middleware"
	"github.com/taibuivan/agentdesk/internal/platform/sec"
)

// tokenResolver maps bearer tokens straight to user ids.
type tokenResolver map[string]string

func (resolver tokenResolver) Resolve(_ context.Context, header http.Header) (*sec.Identity, error) {
	userID, ok := resolver[strings.TrimPrefix(header.Get("Authorization"), "Bearer ")]
	if !ok {
		return nil, nil
	}
	return &sec.Identity{ID: userID}, nil
}

func newOrgRouter() (http.Handler, *memoryRepository) {
	service, repository, _, _ := newTestService()
	repository.seedOrg(orgAcme, "acme")
	repository.seedOrg(orgGlobex, "globex")
	repository.seedMember("user-owner", "owner@agentdesk.dev", orgAcme, sec.RoleOwner, joined)
	repository.seedMember("user-admin", "admin@agentdesk.dev", orgAcme, sec.RoleAdmin, joined)
	repository.seedMember("user-member", "member@agentdesk.dev", orgAcme, sec.RoleMember, joined)
	repository.seedMember("user-member", "member@agentdesk.dev", orgGlobex, sec.RoleAdmin, joined)

	resolver := tokenResolver{
		"owner":    "user-owner",
		"admin":    "user-admin",
		"member":   "user-member",
		"stranger": "user-stranger",
	}
	handler := org.NewHandler(service, middleware.NewGuard(resolver, service))

	router := chi.NewRouter()
	router.Mount("/orgs", handler.CollectionRoutes())
	router.Mount("/organization", handler.OrganizationRoutes())
	return router, repository
}

func call(router http.Handler, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, body)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestHandler_ListOrganizations(t *testing.T) {
	router, _ := newOrgRouter()

	assert.Equal(t, http.StatusUnauthorized, call(router, http.MethodGet, "/orgs", "", nil).Code)

	recorder := call(router, http.MethodGet, "/orgs", "member", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data struct {
			Organizations []struct {
				ID   string `json:"id"`
				Role string `json:"role"`
			} `json:"organizations"`
			RequiresOrganization bool `json:"requires_organization"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	assert.Len(t, envelope.Data.Organizations, 2)
	assert.False(t, envelope.Data.RequiresOrganization)

	stranger := call(router, http.MethodGet, "/orgs/status", "stranger", nil)
	require.Equal(t, http.StatusOK, stranger.Code)
	assert.JSONEq(t, `{"data":{"has_organizations":false}}`, stranger.Body.String())
}

func TestHandler_CreateOrganization(t *testing.T) {
	router, repository := newOrgRouter()

	recorder := call(router, http.MethodPost, "/orgs", "stranger", strings.NewReader(`{"name":"Initech Helpdesk"}`))

	require.Equal(t, http.StatusCreated, recorder.Code)
	var envelope struct {
		Data struct {
			ID   string `json:"id"`
			Slug string `json:"slug"`
			Role string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	assert.Equal(t, "initech-helpdesk", envelope.Data.Slug)
	assert.Equal(t, "owner", envelope.Data.Role)
	assert.Equal(t, sec.RoleOwner, repository.roleOf("user-stranger", envelope.Data.ID))
}

func TestHandler_OrganizationGates(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		token  string
		body   string
		status int
	}{
		{"no session", http.MethodGet, "/organization?orgId=" + orgAcme, "", "", http.StatusUnauthorized},
		{"no org id", http.MethodGet, "/organization", "member", "", http.StatusBadRequest},
		{"non member", http.MethodGet, "/organization?orgId=" + orgAcme, "stranger", "", http.StatusForbidden},
		{"malformed org id", http.MethodGet, "/organization?orgId=acme", "member", "", http.StatusForbidden},
		{"member reads", http.MethodGet, "/organization?orgId=" + orgAcme, "member", "", http.StatusOK},
		{"member cannot rename", http.MethodPatch, "/organization?orgId=" + orgAcme, "member", `{"name":"X"}`, http.StatusForbidden},
		{"admin renames", http.MethodPatch, "/organization?orgId=" + orgAcme, "admin", `{"name":"Acme Inc"}`, http.StatusOK},
		{"admin cannot delete", http.MethodDelete, "/organization?orgId=" + orgAcme, "admin", "", http.StatusForbidden},
		{"admin in globex renames globex", http.MethodPatch, "/organization", "member", `{"orgId":"` + orgGlobex + `","name":"Globex Corp"}`, http.StatusOK},
		{"owner deletes", http.MethodDelete, "/organization?orgId=" + orgAcme, "owner", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newOrgRouter()

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			recorder := call(router, tt.method, tt.target, tt.token, body)

			assert.Equal(t, tt.status, recorder.Code, recorder.Body.String())
		})
	}
}

func TestHandler_Members(t *testing.T) {
	router, repository := newOrgRouter()
	repository.emails["new@agentdesk.dev"] = "user-new"

	listed := call(router, http.MethodGet, "/organization/members?orgId="+orgAcme, "member", nil)
	require.Equal(t, http.StatusOK, listed.Code)
	assert.Equal(t, 3, strings.Count(listed.Body.String(), `"user_id"`))

	denied := call(router, http.MethodPost, "/organization/members", "member",
		strings.NewReader(`{"orgId":"`+orgAcme+`","email":"new@agentdesk.dev"}`))
	assert.Equal(t, http.StatusForbidden, denied.Code)

	added := call(router, http.MethodPost, "/organization/members", "admin",
		strings.NewReader(`{"orgId":"`+orgAcme+`","email":"new@agentdesk.dev"}`))
	require.Equal(t, http.StatusCreated, added.Code, added.Body.String())
	assert.Equal(t, sec.RoleMember, repository.roleOf("user-new", orgAcme))

	badRole := call(router, http.MethodPatch, "/organization/members/user-new?orgId="+orgAcme, "admin",
		strings.NewReader(`{"role":"superuser"}`))
	assert.Equal(t, http.StatusBadRequest, badRole.Code)

	promoted := call(router, http.MethodPatch, "/organization/members/user-new?orgId="+orgAcme, "admin",
		strings.NewReader(`{"role":"admin"}`))
	require.Equal(t, http.StatusNoContent, promoted.Code, promoted.Body.String())
	assert.Equal(t, sec.RoleAdmin, repository.roleOf("user-new", orgAcme))

	removed := call(router, http.MethodDelete, "/organization/members/user-new?orgId="+orgAcme, "admin", nil)
	assert.Equal(t, http.StatusNoContent, removed.Code)

	// Revocation applies to the very next request.
	revoked := call(router, http.MethodGet, "/organization?orgId="+orgAcme, "member", nil)
	require.Equal(t, http.StatusOK, revoked.Code)
	call(router, http.MethodDelete, "/organization/members/user-member?orgId="+orgAcme, "admin", nil)
	assert.Equal(t, http.StatusForbidden, call(router, http.MethodGet, "/organization?orgId="+orgAcme, "member", nil).Code)
}
