// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// WorkspaceKBTable represents the 'kb' table
type WorkspaceKBTable struct {
	Table       string
	ID          string
	OrgID       string
	Name        string
	Description string
	Content     string
	Metadata    string
	CreatedBy   string
	CreatedAt   string
	UpdatedAt   string
}

// WorkspaceKB is the schema definition for kb
var WorkspaceKB = WorkspaceKBTable{
	Table:       "kb",
	ID:          "id",
	OrgID:       "org_id",
	Name:        "name",
	Description: "description",
	Content:     "content",
	Metadata:    "metadata",
	CreatedBy:   "created_by",
	CreatedAt:   "created_at",
	UpdatedAt:   "updated_at",
}

// Columns returns all standard column names
func (t WorkspaceKBTable) Columns() []string {
	return []string{
		t.ID, t.OrgID, t.Name, t.Description, t.Content, t.Metadata, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	}
}
