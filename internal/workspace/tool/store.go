// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tool

import "context"

// Repository is the data access contract for tools.
type Repository interface {
	List(ctx context.Context, orgID string, filter Filter, limit, offset int) ([]*Tool, int, error)
	Get(ctx context.Context, orgID, id string) (*Tool, error)
	Create(ctx context.Context, tool *Tool) error
	Update(ctx context.Context, tool *Tool) error

	// Toggle flips the enabled flag and returns the new value.
	Toggle(ctx context.Context, orgID, id string) (bool, error)

	Delete(ctx context.Context, orgID, id string) error
}
