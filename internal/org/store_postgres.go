// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package org

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/dberr"
	"github.com/taibuivan/agentdesk/internal/platform/postgres"
	"github.com/taibuivan/agentdesk/internal/platform/sec"
)

// ErrSlugTaken is returned by CreateWithOwner when the slug already exists.
var ErrSlugTaken = errors.New("org: slug already taken")

// PostgresRepository implements [Repository] over the orgs and
// org_memberships tables.
type PostgresRepository struct {
	db postgres.DB
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(db postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Membership Lookup

/*
FindMemberships returns the membership rows for a user in an organization.

Description: Ordered by created_at DESC so the first row is the most recent
when duplicates slipped past the unique constraint.

Parameters:
  - ctx: context.Context
  - userID: string
  - orgID: string

Returns:
  - []*sec.Membership: Matching rows, newest first
  - error: Database errors
*/
func (repository *PostgresRepository) FindMemberships(ctx context.Context, userID, orgID string) ([]*sec.Membership, error) {
	const query = `
		SELECT id::text, user_id, org_id::text, role::text, created_at, updated_at
		FROM org_memberships
		WHERE user_id = $1 AND org_id = $2
		ORDER BY created_at DESC`

	rows, err := repository.db.Query(ctx, query, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("postgres_membership_repo_find_failed: %w", err)
	}
	defer rows.Close()

	memberships := make([]*sec.Membership, 0, 1)
	for rows.Next() {
		var (
			membership sec.Membership
			role       string
		)
		if err := rows.Scan(&membership.ID, &membership.UserID, &membership.OrgID, &role, &membership.CreatedAt, &membership.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres_membership_repo_scan_failed: %w", err)
		}
		if membership.Role, err = sec.ParseRole(role); err != nil {
			return nil, fmt.Errorf("postgres_membership_repo_scan_failed: %w", err)
		}
		memberships = append(memberships, &membership)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_membership_repo_rows_failed: %w", err)
	}

	return memberships, nil
}

/*
HasOrganizations reports whether a user holds any membership.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - bool: True when at least one membership exists
  - error: Database errors
*/
func (repository *PostgresRepository) HasOrganizations(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM org_memberships WHERE user_id = $1)`

	var exists bool
	if err := repository.db.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_membership_repo_exists_failed: %w", err)
	}

	return exists, nil
}

// # Organizations

/*
ListForUser returns the caller's organizations with their role in each.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - []*Summary: Organizations ordered by name
  - error: Database errors
*/
func (repository *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*Summary, error) {
	const query = `
		SELECT o.id::text, o.name, o.slug, o.created_at, o.updated_at, m.role::text
		FROM orgs o
		JOIN org_memberships m ON m.org_id = o.id
		WHERE m.user_id = $1
		ORDER BY o.name`

	rows, err := repository.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_org_repo_list_failed: %w", err)
	}
	defer rows.Close()

	summaries := make([]*Summary, 0)
	for rows.Next() {
		var (
			summary Summary
			role    string
		)
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.Slug, &summary.CreatedAt, &summary.UpdatedAt, &role); err != nil {
			return nil, fmt.Errorf("postgres_org_repo_scan_failed: %w", err)
		}
		if summary.Role, err = sec.ParseRole(role); err != nil {
			return nil, fmt.Errorf("postgres_org_repo_scan_failed: %w", err)
		}
		summaries = append(summaries, &summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_org_repo_rows_failed: %w", err)
	}

	return summaries, nil
}

/*
FindByID retrieves an organization.

Parameters:
  - ctx: context.Context
  - orgID: string

Returns:
  - *Organization: Hydrated entity, or nil when absent
  - error: Database errors
*/
func (repository *PostgresRepository) FindByID(ctx context.Context, orgID string) (*Organization, error) {
	const query = `
		SELECT id::text, name, slug, created_at, updated_at
		FROM orgs
		WHERE id = $1`

	var organization Organization
	err := repository.db.QueryRow(ctx, query, orgID).Scan(
		&organization.ID,
		&organization.Name,
		&organization.Slug,
		&organization.CreatedAt,
		&organization.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres_org_repo_find_failed: %w", err)
	}

	return &organization, nil
}

/*
CreateWithOwner inserts an organization and its first owner in one transaction.

Parameters:
  - ctx: context.Context
  - organization: *Organization
  - owner: *sec.Membership

Returns:
  - error: ErrSlugTaken on slug collision, or database errors
*/
func (repository *PostgresRepository) CreateWithOwner(ctx context.Context, organization *Organization, owner *sec.Membership) error {
	const insertOrg = `
		INSERT INTO orgs (id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	const insertMembership = `
		INSERT INTO org_memberships (id, user_id, org_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	return postgres.InTx(ctx, repository.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertOrg,
			organization.ID,
			organization.Name,
			organization.Slug,
			organization.CreatedAt,
			organization.UpdatedAt,
		); err != nil {
			if dberr.IsUniqueViolation(err) {
				return ErrSlugTaken
			}
			return fmt.Errorf("postgres_org_repo_create_failed: %w", err)
		}

		if _, err := tx.Exec(ctx, insertMembership,
			owner.ID,
			owner.UserID,
			owner.OrgID,
			string(owner.Role),
			owner.CreatedAt,
			owner.UpdatedAt,
		); err != nil {
			return fmt.Errorf("postgres_org_repo_create_owner_failed: %w", err)
		}
		return nil
	})
}

/*
Rename updates an organization's display name.

Parameters:
  - ctx: context.Context
  - orgID: string
  - name: string

Returns:
  - *Organization: The updated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) Rename(ctx context.Context, orgID, name string) (*Organization, error) {
	const query = `
		UPDATE orgs SET name = $2, updated_at = $3
		WHERE id = $1
		RETURNING id::text, name, slug, created_at, updated_at`

	var organization Organization
	err := repository.db.QueryRow(ctx, query, orgID, name, time.Now().UTC()).Scan(
		&organization.ID,
		&organization.Name,
		&organization.Slug,
		&organization.CreatedAt,
		&organization.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Organization")
		}
		return nil, fmt.Errorf("postgres_org_repo_rename_failed: %w", err)
	}

	return &organization, nil
}

/*
Delete removes an organization.

Parameters:
  - ctx: context.Context
  - orgID: string

Returns:
  - error: Database errors
*/
func (repository *PostgresRepository) Delete(ctx context.Context, orgID string) error {
	const query = `DELETE FROM orgs WHERE id = $1`

	if _, err := repository.db.Exec(ctx, query, orgID); err != nil {
		return fmt.Errorf("postgres_org_repo_delete_failed: %w", err)
	}

	return nil
}

// # Members

/*
ListMembers returns an organization's members with their account details.

Parameters:
  - ctx: context.Context
  - orgID: string

Returns:
  - []*Member: Members ordered by join time
  - error: Database errors
*/
func (repository *PostgresRepository) ListMembers(ctx context.Context, orgID string) ([]*Member, error) {
	const query = `
		SELECT u.id, u.email, u.name, m.role::text, m.created_at
		FROM org_memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.org_id = $1
		ORDER BY m.created_at`

	rows, err := repository.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("postgres_member_repo_list_failed: %w", err)
	}
	defer rows.Close()

	members := make([]*Member, 0)
	for rows.Next() {
		var (
			member Member
			role   string
		)
		if err := rows.Scan(&member.UserID, &member.Email, &member.Name, &role, &member.JoinedAt); err != nil {
			return nil, fmt.Errorf("postgres_member_repo_scan_failed: %w", err)
		}
		if member.Role, err = sec.ParseRole(role); err != nil {
			return nil, fmt.Errorf("postgres_member_repo_scan_failed: %w", err)
		}
		members = append(members, &member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_member_repo_rows_failed: %w", err)
	}

	return members, nil
}

/*
FindUserIDByEmail resolves an account by email.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - string: The account id, or "" when no account matches
  - error: Database errors
*/
func (repository *PostgresRepository) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	const query = `SELECT id FROM users WHERE email = $1`

	var userID string
	if err := repository.db.QueryRow(ctx, query, email).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("postgres_member_repo_find_user_failed: %w", err)
	}

	return userID, nil
}

/*
AddMember inserts a membership.

Parameters:
  - ctx: context.Context
  - membership: *sec.Membership

Returns:
  - error: apperr.Conflict when the user is already a member, or database errors
*/
func (repository *PostgresRepository) AddMember(ctx context.Context, membership *sec.Membership) error {
	const query = `
		INSERT INTO org_memberships (id, user_id, org_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := repository.db.Exec(ctx, query,
		membership.ID,
		membership.UserID,
		membership.OrgID,
		string(membership.Role),
		membership.CreatedAt,
		membership.UpdatedAt,
	); err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("User is already a member of this organization")
		}
		return fmt.Errorf("postgres_member_repo_add_failed: %w", err)
	}

	return nil
}

/*
UpdateMemberRole changes a member's role.

Parameters:
  - ctx: context.Context
  - orgID: string
  - userID: string
  - role: sec.Role

Returns:
  - bool: False when no membership matched
  - error: Database errors
*/
func (repository *PostgresRepository) UpdateMemberRole(ctx context.Context, orgID, userID string, role sec.Role) (bool, error) {
	const query = `
		UPDATE org_memberships SET role = $3, updated_at = $4
		WHERE org_id = $1 AND user_id = $2`

	tag, err := repository.db.Exec(ctx, query, orgID, userID, string(role), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("postgres_member_repo_update_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

/*
RemoveMember deletes a membership.

Parameters:
  - ctx: context.Context
  - orgID: string
  - userID: string

Returns:
  - bool: False when no membership matched
  - error: Database errors
*/
func (repository *PostgresRepository) RemoveMember(ctx context.Context, orgID, userID string) (bool, error) {
	const query = `DELETE FROM org_memberships WHERE org_id = $1 AND user_id = $2`

	tag, err := repository.db.Exec(ctx, query, orgID, userID)
	if err != nil {
		return false, fmt.Errorf("postgres_member_repo_remove_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

/*
CountOwners returns the number of owners in an organization.

Parameters:
  - ctx: context.Context
  - orgID: string

Returns:
  - int: Owner count
  - error: Database errors
*/
func (repository *PostgresRepository) CountOwners(ctx context.Context, orgID string) (int, error) {
	const query = `SELECT COUNT(*) FROM org_memberships WHERE org_id = $1 AND role = 'owner'`

	var count int
	if err := repository.db.QueryRow(ctx, query, orgID).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_member_repo_count_owners_failed: %w", err)
	}

	return count, nil
}
