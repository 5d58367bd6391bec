// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package tool manages the integrations an organization exposes to its
// assistants (HTTP callers, search, and similar).
package tool

import "time"

// Tool is an integration configured for an organization.
type Tool struct {
	ID          string         `json:"id"`
	OrgID       string         `json:"org_id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Config      map[string]any `json:"config"`
	Enabled     bool           `json:"enabled"`
	CreatedBy   string         `json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Filter narrows a tool listing. Empty fields match everything.
type Filter struct {
	Types   []string
	Enabled *bool
}

const (
	FieldName        = "name"
	FieldType        = "type"
	FieldDescription = "description"
)

const (
	MaxNameLength        = 200
	MaxTypeLength        = 64
	MaxDescriptionLength = 2000
)
