// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package knowledge

import "context"

// Repository is the data access contract for knowledge base documents.
type Repository interface {
	// List returns one page of documents, most recently updated first.
	// query, when non-empty, matches name or description case-insensitively.
	List(ctx context.Context, orgID, query string, limit, offset int) ([]*Document, int, error)

	Get(ctx context.Context, orgID, id string) (*Document, error)
	Create(ctx context.Context, document *Document) error
	Update(ctx context.Context, document *Document) error

	// Delete removes the document permanently, or returns apperr.NotFound.
	Delete(ctx context.Context, orgID, id string) error
}
