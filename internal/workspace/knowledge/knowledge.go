// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package knowledge stores the documents an organization's assistants draw on.

Documents live in the kb table. Listings return summaries without the body;
the full content is only served by a single-document read.
*/
package knowledge

import "time"

// Document is a knowledge base entry.
type Document struct {
	ID          string         `json:"id"`
	OrgID       string         `json:"org_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata"`
	CreatedBy   string         `json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Summary is the listing projection of a [Document].
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Size        int       `json:"size"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Summarize projects a document for listings.
func Summarize(document *Document) Summary {
	return Summary{
		ID:          document.ID,
		Name:        document.Name,
		Description: document.Description,
		Size:        len(document.Content),
		UpdatedAt:   document.UpdatedAt,
	}
}

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldContent     = "content"
)

const (
	MaxNameLength        = 200
	MaxDescriptionLength = 2000
	MaxContentLength     = 512 * 1024
)
