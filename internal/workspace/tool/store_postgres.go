// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/database/schema"
	"github.com/taibuivan/agentdesk/internal/platform/dberr"
	"github.com/taibuivan/agentdesk/internal/platform/postgres"
	"github.com/taibuivan/agentdesk/pkg/pointer"
)

// PostgresRepository implements [Repository] over the tools table.
type PostgresRepository struct {
	db postgres.DB
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(db postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var table = schema.WorkspaceTool

var selectColumns = fmt.Sprintf(
	"%s::text, %s::text, %s, %s, %s, %s::text, %s, COALESCE(%s, ''), %s, %s",
	table.ID, table.OrgID, table.Name, table.Type, table.Description,
	table.Config, table.Enabled, table.CreatedBy, table.CreatedAt, table.UpdatedAt,
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTool(row rowScanner) (*Tool, error) {
	var (
		tool   Tool
		config string
	)
	if err := row.Scan(
		&tool.ID, &tool.OrgID, &tool.Name, &tool.Type, &tool.Description,
		&config, &tool.Enabled, &tool.CreatedBy, &tool.CreatedAt, &tool.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(config), &tool.Config); err != nil {
		return nil, fmt.Errorf("tool_config_decode_failed: %w", err)
	}
	return &tool, nil
}

/*
List returns one page of tools ordered by name.

Parameters:
  - ctx: context.Context
  - orgID: string
  - filter: Filter (types are matched with = ANY)
  - limit: int
  - offset: int

Returns:
  - []*Tool: The page
  - int: Total matching rows
  - error: Database errors
*/
func (repository *PostgresRepository) List(ctx context.Context, orgID string, filter Filter, limit, offset int) ([]*Tool, int, error) {
	predicates := []string{fmt.Sprintf("%s = $1", table.OrgID)}
	args := []any{orgID}

	if len(filter.Types) > 0 {
		args = append(args, filter.Types)
		predicates = append(predicates, fmt.Sprintf("%s = ANY($%d)", table.Type, len(args)))
	}
	if filter.Enabled != nil {
		args = append(args, *filter.Enabled)
		predicates = append(predicates, fmt.Sprintf("%s = $%d", table.Enabled, len(args)))
	}

	where := strings.Join(predicates, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, table.Table, where)
	if err := repository.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_tool_repo_count_failed: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s ASC LIMIT $%d OFFSET $%d`,
		selectColumns, table.Table, where, table.Name, len(args)+1, len(args)+2,
	)
	rows, err := repository.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_tool_repo_list_failed: %w", err)
	}
	defer rows.Close()

	tools := make([]*Tool, 0)
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_tool_repo_scan_failed: %w", err)
		}
		tools = append(tools, tool)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_tool_repo_rows_failed: %w", err)
	}

	return tools, total, nil
}

// Get returns a tool, or apperr.NotFound.
func (repository *PostgresRepository) Get(ctx context.Context, orgID, id string) (*Tool, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		selectColumns, table.Table, table.ID, table.OrgID,
	)

	tool, err := scanTool(repository.db.QueryRow(ctx, query, id, orgID))
	if err != nil {
		return nil, dberr.Wrap(err, "Tool")
	}
	return tool, nil
}

// Create inserts a new tool.
func (repository *PostgresRepository) Create(ctx context.Context, tool *Tool) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		table.Table, table.ID, table.OrgID, table.Name, table.Type, table.Description,
		table.Config, table.Enabled, table.CreatedBy, table.CreatedAt, table.UpdatedAt,
	)

	config, err := json.Marshal(tool.Config)
	if err != nil {
		return fmt.Errorf("tool_config_encode_failed: %w", err)
	}

	var createdBy *string
	if tool.CreatedBy != "" {
		createdBy = pointer.To(tool.CreatedBy)
	}

	if _, err := repository.db.Exec(ctx, query,
		tool.ID, tool.OrgID, tool.Name, tool.Type, tool.Description,
		config, tool.Enabled, createdBy, tool.CreatedAt, tool.UpdatedAt,
	); err != nil {
		return dberr.Wrap(err, "Tool")
	}
	return nil
}

// Update persists the mutable fields.
func (repository *PostgresRepository) Update(ctx context.Context, tool *Tool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8
		WHERE %s = $1 AND %s = $2`,
		table.Table,
		table.Name, table.Type, table.Description, table.Config, table.Enabled, table.UpdatedAt,
		table.ID, table.OrgID,
	)

	config, err := json.Marshal(tool.Config)
	if err != nil {
		return fmt.Errorf("tool_config_encode_failed: %w", err)
	}

	tag, err := repository.db.Exec(ctx, query,
		tool.ID, tool.OrgID, tool.Name, tool.Type, tool.Description, config, tool.Enabled, tool.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Tool")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Tool")
	}
	return nil
}

// Toggle flips the enabled flag in place.
func (repository *PostgresRepository) Toggle(ctx context.Context, orgID, id string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = NOT %s, %s = NOW()
		WHERE %s = $1 AND %s = $2
		RETURNING %s`,
		table.Table, table.Enabled, table.Enabled, table.UpdatedAt,
		table.ID, table.OrgID,
		table.Enabled,
	)

	var enabled bool
	if err := repository.db.QueryRow(ctx, query, id, orgID).Scan(&enabled); err != nil {
		return false, dberr.Wrap(err, "Tool")
	}
	return enabled, nil
}

// Delete removes a tool.
func (repository *PostgresRepository) Delete(ctx context.Context, orgID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, table.Table, table.ID, table.OrgID)

	tag, err := repository.db.Exec(ctx, query, id, orgID)
	if err != nil {
		return dberr.Wrap(err, "Tool")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Tool")
	}
	return nil
}
