// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides the security primitives shared by every layer:
// the authenticated principal, organization roles, and hashing helpers.
//
// # Architecture
//
// This package is a leaf. Domain packages (auth, org) and platform packages
// (ctxutil, middleware) all depend on it, so it must never import them.
package sec

import "time"

// # Principals

// Identity is the authenticated user attached to a request once a session
// has been verified. It is read-only from the authorization layer's view.
type Identity struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified bool   `json:"email_verified"`
}

// Membership is the role-bearing link between one identity and one organization.
type Membership struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OrgID     string    `json:"org_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
