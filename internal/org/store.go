// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package org

import (
	"context"

	"github.com/taibuivan/agentdesk/internal/platform/sec"
)

// # Membership Data Access

// MembershipRepository answers the equality-predicate queries the guard needs.
type MembershipRepository interface {

	/*
		FindMemberships returns every membership row for the (userID, orgID)
		pair, newest first. More than one row means the uniqueness invariant
		was broken; the caller decides how to react.

		Parameters:
		  - ctx: context.Context
		  - userID: string
		  - orgID: string

		Returns:
		  - []*sec.Membership: Matching rows, possibly empty
		  - error: Database retrieval failures
	*/
	FindMemberships(ctx context.Context, userID, orgID string) ([]*sec.Membership, error)

	/*
		HasOrganizations reports whether the user belongs to any organization.

		Parameters:
		  - ctx: context.Context
		  - userID: string

		Returns:
		  - bool: True when at least one membership exists
		  - error: Database retrieval failures
	*/
	HasOrganizations(ctx context.Context, userID string) (bool, error)
}

// # Organization Data Access

// Repository is the full data access contract of the org package.
type Repository interface {
	MembershipRepository

	// ListForUser returns every organization the user belongs to with their role.
	ListForUser(ctx context.Context, userID string) ([]*Summary, error)

	// FindByID returns the organization, or nil when absent.
	FindByID(ctx context.Context, orgID string) (*Organization, error)

	// CreateWithOwner inserts the organization and the owner membership atomically.
	CreateWithOwner(ctx context.Context, organization *Organization, owner *sec.Membership) error

	// Rename updates the display name.
	Rename(ctx context.Context, orgID, name string) (*Organization, error)

	// Delete removes the organization; memberships and resources cascade.
	Delete(ctx context.Context, orgID string) error

	// ListMembers returns the members of an organization, oldest first.
	ListMembers(ctx context.Context, orgID string) ([]*Member, error)

	// FindUserIDByEmail resolves an account id, or "" when no account matches.
	FindUserIDByEmail(ctx context.Context, email string) (string, error)

	// AddMember inserts a membership; a duplicate pair is a conflict.
	AddMember(ctx context.Context, membership *sec.Membership) error

	// UpdateMemberRole changes a member's role; false when no membership matched.
	UpdateMemberRole(ctx context.Context, orgID, userID string, role sec.Role) (bool, error)

	// RemoveMember deletes a membership; false when no membership matched.
	RemoveMember(ctx context.Context, orgID, userID string) (bool, error)

	// CountOwners returns how many owners the organization has.
	CountOwners(ctx context.Context, orgID string) (int, error)
}
