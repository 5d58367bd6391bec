// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package org_test

import (
	"bytes"
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/agentdesk/internal/org"
	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/sec"
	"github.com/taibuivan/agentdesk/internal/workspace/activitylog"
)

// memoryRepository is an in-memory [org.Repository].
type memoryRepository struct {
	mu            sync.Mutex
	organizations map[string]*org.Organization
	memberships   []*sec.Membership
	emails        map[string]string
	takenSlugs    map[string]bool
	err           error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		organizations: map[string]*org.Organization{},
		emails:        map[string]string{},
		takenSlugs:    map[string]bool{},
	}
}

func (repository *memoryRepository) seedOrg(id, name string) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.organizations[id] = &org.Organization{ID: id, Name: name, Slug: name}
	repository.takenSlugs[name] = true
}

func (repository *memoryRepository) seedMember(userID, email, orgID string, role sec.Role, createdAt time.Time) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.emails[email] = userID
	repository.memberships = append(repository.memberships, &sec.Membership{
		ID:        userID + "@" + orgID + "@" + createdAt.Format(time.RFC3339Nano),
		UserID:    userID,
		OrgID:     orgID,
		Role:      role,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
}

func (repository *memoryRepository) roleOf(userID, orgID string) sec.Role {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, membership := range repository.memberships {
		if membership.UserID == userID && membership.OrgID == orgID {
			return membership.Role
		}
	}
	return ""
}

func (repository *memoryRepository) FindMemberships(_ context.Context, userID, orgID string) ([]*sec.Membership, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.err != nil {
		return nil, repository.err
	}

	var found []*sec.Membership
	for _, membership := range repository.memberships {
		if membership.UserID == userID && membership.OrgID == orgID {
			copied := *membership
			found = append(found, &copied)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	return found, nil
}

func (repository *memoryRepository) HasOrganizations(_ context.Context, userID string) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, membership := range repository.memberships {
		if membership.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (repository *memoryRepository) ListForUser(_ context.Context, userID string) ([]*org.Summary, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	summaries := make([]*org.Summary, 0)
	for _, membership := range repository.memberships {
		if membership.UserID != userID {
			continue
		}
		if organization, ok := repository.organizations[membership.OrgID]; ok {
			summaries = append(summaries, &org.Summary{Organization: *organization, Role: membership.Role})
		}
	}
	return summaries, nil
}

func (repository *memoryRepository) FindByID(_ context.Context, orgID string) (*org.Organization, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	organization, ok := repository.organizations[orgID]
	if !ok {
		return nil, nil
	}
	copied := *organization
	return &copied, nil
}

func (repository *memoryRepository) CreateWithOwner(_ context.Context, organization *org.Organization, owner *sec.Membership) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.takenSlugs[organization.Slug] {
		return org.ErrSlugTaken
	}
	copied := *organization
	repository.organizations[organization.ID] = &copied
	repository.takenSlugs[organization.Slug] = true
	repository.memberships = append(repository.memberships, owner)
	return nil
}

func (repository *memoryRepository) Rename(_ context.Context, orgID, name string) (*org.Organization, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	organization, ok := repository.organizations[orgID]
	if !ok {
		return nil, apperr.NotFound("Organization")
	}
	organization.Name = name
	copied := *organization
	return &copied, nil
}

func (repository *memoryRepository) Delete(_ context.Context, orgID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	delete(repository.organizations, orgID)
	kept := repository.memberships[:0]
	for _, membership := range repository.memberships {
		if membership.OrgID != orgID {
			kept = append(kept, membership)
		}
	}
	repository.memberships = kept
	return nil
}

func (repository *memoryRepository) ListMembers(_ context.Context, orgID string) ([]*org.Member, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	members := make([]*org.Member, 0)
	for _, membership := range repository.memberships {
		if membership.OrgID == orgID {
			members = append(members, &org.Member{UserID: membership.UserID, Role: membership.Role, JoinedAt: membership.CreatedAt})
		}
	}
	return members, nil
}

func (repository *memoryRepository) FindUserIDByEmail(_ context.Context, email string) (string, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return repository.emails[email], nil
}

func (repository *memoryRepository) AddMember(_ context.Context, membership *sec.Membership) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, existing := range repository.memberships {
		if existing.UserID == membership.UserID && existing.OrgID == membership.OrgID {
			return apperr.Conflict("User is already a member of this organization")
		}
	}
	repository.memberships = append(repository.memberships, membership)
	return nil
}

func (repository *memoryRepository) UpdateMemberRole(_ context.Context, orgID, userID string, role sec.Role) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	updated := false
	for _, membership := range repository.memberships {
		if membership.UserID == userID && membership.OrgID == orgID {
			membership.Role = role
			updated = true
		}
	}
	return updated, nil
}

func (repository *memoryRepository) RemoveMember(_ context.Context, orgID, userID string) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	kept := repository.memberships[:0]
	removed := false
	for _, membership := range repository.memberships {
		if membership.UserID == userID && membership.OrgID == orgID {
			removed = true
			continue
		}
		kept = append(kept, membership)
	}
	repository.memberships = kept
	return removed, nil
}

func (repository *memoryRepository) CountOwners(_ context.Context, orgID string) (int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	owners := 0
	for _, membership := range repository.memberships {
		if membership.OrgID == orgID && membership.Role == sec.RoleOwner {
			owners++
		}
	}
	return owners, nil
}

// recordedEntry is one call to [activitylog.Recorder.Record].
type recordedEntry struct {
	orgID   string
	level   activitylog.Level
	message string
	meta    map[string]any
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries []recordedEntry
}

func (recorder *memoryRecorder) Record(_ context.Context, orgID string, level activitylog.Level, message string, metadata map[string]any) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.entries = append(recorder.entries, recordedEntry{orgID, level, message, metadata})
}

func (recorder *memoryRecorder) messages() []string {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	messages := make([]string, 0, len(recorder.entries))
	for _, entry := range recorder.entries {
		messages = append(messages, entry.message)
	}
	return messages
}

// newTestService wires a service to in-memory collaborators and a captured log.
func newTestService() (*org.Service, *memoryRepository, *memoryRecorder, *bytes.Buffer) {
	repository := newMemoryRepository()
	recorder := &memoryRecorder{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return org.NewService(repository, recorder, logger), repository, recorder, &logs
}
