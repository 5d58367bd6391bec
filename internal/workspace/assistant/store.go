// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assistant

import "context"

// Repository is the data access contract for assistants. Every method takes
// the owning organization id and never touches rows of another organization.
type Repository interface {

	/*
		List returns one page of the organization's assistants.

		Parameters:
		  - ctx: context.Context
		  - orgID: string
		  - filter: Filter
		  - limit: int
		  - offset: int

		Returns:
		  - []*Assistant: The page, newest first
		  - int: Total matching rows
		  - error: Database errors
	*/
	List(ctx context.Context, orgID string, filter Filter, limit, offset int) ([]*Assistant, int, error)

	// Get returns an assistant, or apperr.NotFound.
	Get(ctx context.Context, orgID, id string) (*Assistant, error)

	// Create inserts a new assistant.
	Create(ctx context.Context, assistant *Assistant) error

	// Update persists the mutable fields and refreshes UpdatedAt.
	Update(ctx context.Context, assistant *Assistant) error

	// Archive sets the status to archived, or returns apperr.NotFound.
	Archive(ctx context.Context, orgID, id string) error
}
