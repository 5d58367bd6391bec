// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// WorkspaceAssistantTable represents the 'assistants' table
type WorkspaceAssistantTable struct {
	Table        string
	ID           string
	OrgID        string
	Name         string
	Description  string
	SystemPrompt string
	Status       string
	Config       string
	CreatedBy    string
	CreatedAt    string
	UpdatedAt    string
}

// WorkspaceAssistant is the schema definition for assistants
var WorkspaceAssistant = WorkspaceAssistantTable{
	Table:        "assistants",
	ID:           "id",
	OrgID:        "org_id",
	Name:         "name",
	Description:  "description",
	SystemPrompt: "system_prompt",
	Status:       "status",
	Config:       "config",
	CreatedBy:    "created_by",
	CreatedAt:    "created_at",
	UpdatedAt:    "updated_at",
}

// Columns returns all standard column names
func (t WorkspaceAssistantTable) Columns() []string {
	return []string{
		t.ID, t.OrgID, t.Name, t.Description, t.SystemPrompt, t.Status, t.Config, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	}
}
