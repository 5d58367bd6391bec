// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package org implements organizations (tenants) and their role-bearing
memberships.

It provides the membership lookup consumed by the authorization guard and
the use cases behind /api/v1/orgs and /api/v1/organization: creating an
organization, renaming and deleting it, and managing its members.

# Invariants

  - A user has at most one membership per organization.
  - Every organization keeps at least one owner.
  - Only owners may grant, revoke, or modify the owner role.
*/
package org

import (
	"time"

	"github.com/taibuivan/agentdesk/internal/platform/sec"
)

// # Domain Entities

// Organization is a tenant boundary grouping users and resources.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is an organization as seen by one of its members.
type Summary struct {
	Organization
	Role sec.Role `json:"role"`
}

// Member is a membership joined with the member's account details.
type Member struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     sec.Role  `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// # Field Identifiers

const (
	FieldName   = "name"
	FieldEmail  = "email"
	FieldRole   = "role"
	FieldUserID = "user_id"
)

// MaxNameLength bounds organization display names.
const MaxNameLength = 120
