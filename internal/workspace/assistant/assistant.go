// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package assistant manages an organization's AI assistants.
//
// Every operation is scoped by the organization id of the caller's verified
// membership. An assistant of another organization is indistinguishable from
// one that does not exist.
package assistant

import (
	"fmt"
	"time"
)

// # Domain Entities

// Status is the lifecycle state of an assistant.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusArchived Status = "archived"
)

// ParseStatus validates a status from user input or the database.
func ParseStatus(value string) (Status, error) {
	switch status := Status(value); status {
	case StatusActive, StatusInactive, StatusArchived:
		return status, nil
	}
	return "", fmt.Errorf("assistant: invalid status %q", value)
}

// Assistant is a configured AI agent owned by an organization.
type Assistant struct {
	ID           string         `json:"id"`
	OrgID        string         `json:"org_id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	SystemPrompt string         `json:"system_prompt"`
	Status       Status         `json:"status"`
	Config       map[string]any `json:"config"`
	CreatedBy    string         `json:"created_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Filter narrows an assistant listing.
type Filter struct {
	Status Status
	Query  string // Case-insensitive match against the name
}

// # Field Identifiers

const (
	FieldName         = "name"
	FieldDescription  = "description"
	FieldSystemPrompt = "system_prompt"
	FieldStatus       = "status"
)

const (
	MaxNameLength         = 200
	MaxDescriptionLength  = 2000
	MaxSystemPromptLength = 32000
)
