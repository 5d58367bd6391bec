// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// WorkspaceToolTable represents the 'tools' table
type WorkspaceToolTable struct {
	Table       string
	ID          string
	OrgID       string
	Name        string
	Type        string
	Description string
	Config      string
	Enabled     string
	CreatedBy   string
	CreatedAt   string
	UpdatedAt   string
}

// WorkspaceTool is the schema definition for tools
var WorkspaceTool = WorkspaceToolTable{
	Table:       "tools",
	ID:          "id",
	OrgID:       "org_id",
	Name:        "name",
	Type:        "type",
	Description: "description",
	Config:      "config",
	Enabled:     "enabled",
	CreatedBy:   "created_by",
	CreatedAt:   "created_at",
	UpdatedAt:   "updated_at",
}

// Columns returns all standard column names
func (t WorkspaceToolTable) Columns() []string {
	return []string{
		t.ID, t.OrgID, t.Name, t.Type, t.Description, t.Config, t.Enabled, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	}
}
