// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/database/schema"
	"github.com/taibuivan/agentdesk/internal/platform/dberr"
	"github.com/taibuivan/agentdesk/internal/platform/postgres"
	"github.com/taibuivan/agentdesk/pkg/pointer"
)

// PostgresRepository implements [Repository] over the assistants table.
type PostgresRepository struct {
	db postgres.DB
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(db postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var table = schema.WorkspaceAssistant

// selectColumns casts enum, uuid, and jsonb columns to text so that scanning
// does not depend on registered codecs.
var selectColumns = fmt.Sprintf(
	"%s::text, %s::text, %s, %s, %s, %s::text, %s::text, COALESCE(%s, ''), %s, %s",
	table.ID, table.OrgID, table.Name, table.Description, table.SystemPrompt,
	table.Status, table.Config, table.CreatedBy, table.CreatedAt, table.UpdatedAt,
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssistant(row rowScanner) (*Assistant, error) {
	var (
		assistant Assistant
		status    string
		config    string
	)
	if err := row.Scan(
		&assistant.ID, &assistant.OrgID, &assistant.Name, &assistant.Description, &assistant.SystemPrompt,
		&status, &config, &assistant.CreatedBy, &assistant.CreatedAt, &assistant.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	assistant.Status = parsed

	if err := json.Unmarshal([]byte(config), &assistant.Config); err != nil {
		return nil, fmt.Errorf("assistant_config_decode_failed: %w", err)
	}

	return &assistant, nil
}

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
func (repository *PostgresRepository) List(ctx context.Context, orgID string, filter Filter, limit, offset int) ([]*Assistant, int, error) {
	predicates := []string{table.OrgID + " = $1"}
	args := []any{orgID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		predicates = append(predicates, table.Status+" = $"+strconv.Itoa(len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		predicates = append(predicates, table.Name+" ILIKE $"+strconv.Itoa(len(args)))
	}

	where := strings.Join(predicates, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, table.Table, where)
	if err := repository.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_assistant_repo_count_failed: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s DESC LIMIT $%d OFFSET $%d`,
		selectColumns, table.Table, where, table.CreatedAt, len(args)+1, len(args)+2,
	)
	rows, err := repository.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_assistant_repo_list_failed: %w", err)
	}
	defer rows.Close()

	assistants := make([]*Assistant, 0)
	for rows.Next() {
		assistant, err := scanAssistant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_assistant_repo_scan_failed: %w", err)
		}
		assistants = append(assistants, assistant)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_assistant_repo_rows_failed: %w", err)
	}

	return assistants, total, nil
}

// Get returns an assistant, or apperr.NotFound.
func (repository *PostgresRepository) Get(ctx context.Context, orgID, id string) (*Assistant, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		selectColumns, table.Table, table.ID, table.OrgID,
	)

	assistant, err := scanAssistant(repository.db.QueryRow(ctx, query, id, orgID))
	if err != nil {
		return nil, dberr.Wrap(err, "Assistant")
	}
	return assistant, nil
}

// Create inserts a new assistant.
func (repository *PostgresRepository) Create(ctx context.Context, assistant *Assistant) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		table.Table, table.ID, table.OrgID, table.Name, table.Description, table.SystemPrompt,
		table.Status, table.Config, table.CreatedBy, table.CreatedAt, table.UpdatedAt,
	)

	config, err := json.Marshal(assistant.Config)
	if err != nil {
		return fmt.Errorf("assistant_config_encode_failed: %w", err)
	}

	if _, err := repository.db.Exec(ctx, query,
		assistant.ID,
		assistant.OrgID,
		assistant.Name,
		assistant.Description,
		assistant.SystemPrompt,
		string(assistant.Status),
		config,
		nullable(assistant.CreatedBy),
		assistant.CreatedAt,
		assistant.UpdatedAt,
	); err != nil {
		return dberr.Wrap(err, "Assistant")
	}

	return nil
}

// Update persists the mutable fields.
func (repository *PostgresRepository) Update(ctx context.Context, assistant *Assistant) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8
		WHERE %s = $1 AND %s = $2`,
		table.Table,
		table.Name, table.Description, table.SystemPrompt, table.Status, table.Config, table.UpdatedAt,
		table.ID, table.OrgID,
	)

	config, err := json.Marshal(assistant.Config)
	if err != nil {
		return fmt.Errorf("assistant_config_encode_failed: %w", err)
	}

	tag, err := repository.db.Exec(ctx, query,
		assistant.ID,
		assistant.OrgID,
		assistant.Name,
		assistant.Description,
		assistant.SystemPrompt,
		string(assistant.Status),
		config,
		assistant.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Assistant")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Assistant")
	}

	return nil
}

// Archive soft-deletes an assistant. Its log entries keep pointing at it.
func (repository *PostgresRepository) Archive(ctx context.Context, orgID, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $3, %s = NOW() WHERE %s = $1 AND %s = $2`,
		table.Table, table.Status, table.UpdatedAt, table.ID, table.OrgID,
	)

	tag, err := repository.db.Exec(ctx, query, id, orgID, string(StatusArchived))
	if err != nil {
		return dberr.Wrap(err, "Assistant")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Assistant")
	}

	return nil
}

// nullable maps an empty creator to SQL NULL.
func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return pointer.To(value)
}
