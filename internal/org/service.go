// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package org

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/sec"
	"github.com/taibuivan/agentdesk/internal/platform/validate"
	"github.com/taibuivan/agentdesk/internal/workspace/activitylog"
	"github.com/taibuivan/agentdesk/pkg/slug"
	"github.com/taibuivan/agentdesk/pkg/uuid"
)

// slugAttempts bounds how many suffixed slugs are tried on collision.
const slugAttempts = 5

// Service implements the organization and membership use cases.
type Service struct {
	repository Repository
	recorder   activitylog.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository, recorder activitylog.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// # Membership Lookup

/*
LookupMembership returns the user's membership in an organization.

Description: Each call reads the store, so a revoked membership is visible on
the very next request. An org id that is not a UUID cannot match any row and
is answered without a query. When duplicate rows exist the newest wins and the
violation is logged.

Parameters:
  - ctx: context.Context
  - userID: string (required)
  - orgID: string (required)

Returns:
  - *sec.Membership: The membership, or nil when the user is not a member
  - error: Validation errors for empty ids, or storage errors
*/
func (service *Service) LookupMembership(ctx context.Context, userID, orgID string) (*sec.Membership, error) {
	validator := &validate.Validator{}
	validator.Required(FieldUserID, userID).Required("org_id", orgID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if !uuid.Valid(orgID) {
		return nil, nil
	}

	memberships, err := service.repository.FindMemberships(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}

	switch len(memberships) {
	case 0:
		return nil, nil
	case 1:
		return memberships[0], nil
	}

	service.logger.WarnContext(ctx, "membership_integrity_violation",
		slog.String("user_id", userID),
		slog.String("org_id", orgID),
		slog.Int("rows", len(memberships)),
		slog.String("chosen_membership_id", memberships[0].ID),
	)

	return memberships[0], nil
}

// HasOrganizations reports whether the user belongs to any organization.
func (service *Service) HasOrganizations(ctx context.Context, userID string) (bool, error) {
	return service.repository.HasOrganizations(ctx, userID)
}

// # Organizations

// ListForUser returns the organizations the user belongs to.
func (service *Service) ListForUser(ctx context.Context, userID string) ([]*Summary, error) {
	return service.repository.ListForUser(ctx, userID)
}

/*
Create makes a new organization owned by the caller.

Description: The slug is derived from the name; on collision a short random
suffix is appended and the insert retried.

Parameters:
  - ctx: context.Context
  - identity: *sec.Identity (becomes the owner)
  - name: string

Returns:
  - *Summary: The organization with the caller's owner role
  - error: Validation, conflict, or storage errors
*/
func (service *Service) Create(ctx context.Context, identity *sec.Identity, name string) (*Summary, error) {
	name = strings.TrimSpace(name)

	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, MaxNameLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	base := slug.From(name)
	if base == "" {
		base = "org"
	}

	now := service.now().UTC()
	organization := &Organization{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	owner := &sec.Membership{
		ID:        uuid.New(),
		UserID:    identity.ID,
		OrgID:     organization.ID,
		Role:      sec.RoleOwner,
		CreatedAt: now,
		UpdatedAt: now,
	}

	candidate := base
	for attempt := 0; attempt < slugAttempts; attempt++ {
		organization.Slug = candidate

		err := service.repository.CreateWithOwner(ctx, organization, owner)
		if err == nil {
			service.recorder.Record(ctx, organization.ID, activitylog.LevelInfo, "organization created", map[string]any{
				"name": organization.Name,
				"slug": organization.Slug,
			})
			return &Summary{Organization: *organization, Role: sec.RoleOwner}, nil
		}
		if !errors.Is(err, ErrSlugTaken) {
			return nil, err
		}

		id := uuid.New()
		candidate = slug.WithSuffix(base, id[len(id)-6:])
	}

	return nil, apperr.Conflict("Could not allocate a unique slug for this organization")
}

/*
Get returns an organization.

Parameters:
  - ctx: context.Context
  - orgID: string

Returns:
  - *Organization: The organization
  - error: apperr.NotFound or storage errors
*/
func (service *Service) Get(ctx context.Context, orgID string) (*Organization, error) {
	organization, err := service.repository.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if organization == nil {
		return nil, apperr.NotFound("Organization")
	}
	return organization, nil
}

/*
Rename changes the display name. The slug is stable.

Parameters:
  - ctx: context.Context
  - orgID: string
  - name: string

Returns:
  - *Organization: The updated organization
  - error: Validation or storage errors
*/
func (service *Service) Rename(ctx context.Context, orgID, name string) (*Organization, error) {
	name = strings.TrimSpace(name)

	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, MaxNameLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	organization, err := service.repository.Rename(ctx, orgID, name)
	if err != nil {
		return nil, err
	}

	service.recorder.Record(ctx, orgID, activitylog.LevelInfo, "organization renamed", map[string]any{"name": name})
	return organization, nil
}

/*
Delete removes an organization and, by cascade, everything it owns.

Parameters:
  - ctx: context.Context
  - orgID: string

Returns:
  - error: Storage errors
*/
func (service *Service) Delete(ctx context.Context, orgID string) error {
	if err := service.repository.Delete(ctx, orgID); err != nil {
		return err
	}

	// The org's own log is gone with it, so this one goes to the process log.
	service.logger.InfoContext(ctx, "organization_deleted", slog.String("org_id", orgID))
	return nil
}

// # Members

// ListMembers returns the organization's members.
func (service *Service) ListMembers(ctx context.Context, orgID string) ([]*Member, error) {
	return service.repository.ListMembers(ctx, orgID)
}

/*
AddMember adds an existing account to the actor's organization.

Parameters:
  - ctx: context.Context
  - actor: *sec.Membership (the caller's verified membership)
  - email: string
  - role: sec.Role

Returns:
  - *sec.Membership: The new membership
  - error: Forbidden, NotFound, Conflict, or storage errors
*/
func (service *Service) AddMember(ctx context.Context, actor *sec.Membership, email string, role sec.Role) (*sec.Membership, error) {
	if role == sec.RoleOwner && actor.Role != sec.RoleOwner {
		return nil, apperr.Forbidden("Only owners can grant the owner role")
	}

	userID, err := service.repository.FindUserIDByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, apperr.NotFound("User")
	}

	now := service.now().UTC()
	membership := &sec.Membership{
		ID:        uuid.New(),
		UserID:    userID,
		OrgID:     actor.OrgID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := service.repository.AddMember(ctx, membership); err != nil {
		return nil, err
	}

	service.recorder.Record(ctx, actor.OrgID, activitylog.LevelInfo, "member added", map[string]any{
		"user_id": userID,
		"role":    string(role),
	})
	return membership, nil
}

/*
ChangeRole updates another member's role.

Parameters:
  - ctx: context.Context
  - actor: *sec.Membership
  - userID: string (the member being changed)
  - role: sec.Role

Returns:
  - error: Forbidden, NotFound, Unprocessable (last owner), or storage errors
*/
func (service *Service) ChangeRole(ctx context.Context, actor *sec.Membership, userID string, role sec.Role) error {
	target, err := service.LookupMembership(ctx, userID, actor.OrgID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.NotFound("Member")
	}

	if (target.Role == sec.RoleOwner || role == sec.RoleOwner) && actor.Role != sec.RoleOwner {
		return apperr.Forbidden("Only owners can change the owner role")
	}

	if target.Role == sec.RoleOwner && role != sec.RoleOwner {
		if err := service.ensureAnotherOwner(ctx, actor.OrgID); err != nil {
			return err
		}
	}

	updated, err := service.repository.UpdateMemberRole(ctx, actor.OrgID, userID, role)
	if err != nil {
		return err
	}
	if !updated {
		return apperr.NotFound("Member")
	}

	service.recorder.Record(ctx, actor.OrgID, activitylog.LevelInfo, "member role changed", map[string]any{
		"user_id": userID,
		"from":    string(target.Role),
		"to":      string(role),
	})
	return nil
}

/*
RemoveMember removes a member from the actor's organization.

Parameters:
  - ctx: context.Context
  - actor: *sec.Membership
  - userID: string

Returns:
  - error: Forbidden, NotFound, Unprocessable (last owner), or storage errors
*/
func (service *Service) RemoveMember(ctx context.Context, actor *sec.Membership, userID string) error {
	target, err := service.LookupMembership(ctx, userID, actor.OrgID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.NotFound("Member")
	}

	if target.Role == sec.RoleOwner {
		if actor.Role != sec.RoleOwner {
			return apperr.Forbidden("Only owners can remove an owner")
		}
		if err := service.ensureAnotherOwner(ctx, actor.OrgID); err != nil {
			return err
		}
	}

	removed, err := service.repository.RemoveMember(ctx, actor.OrgID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("Member")
	}

	service.recorder.Record(ctx, actor.OrgID, activitylog.LevelInfo, "member removed", map[string]any{
		"user_id": userID,
	})
	return nil
}

// ensureAnotherOwner rejects changes that would leave the org without an owner.
func (service *Service) ensureAnotherOwner(ctx context.Context, orgID string) error {
	owners, err := service.repository.CountOwners(ctx, orgID)
	if err != nil {
		return fmt.Errorf("org_service_count_owners_failed: %w", err)
	}
	if owners <= 1 {
		return apperr.Unprocessable("An organization must keep at least one owner")
	}
	return nil
}
