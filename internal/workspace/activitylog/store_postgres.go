// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package activitylog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/taibuivan/agentdesk/internal/platform/postgres"
)

// Repository defines the data access contract for log entries.
type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	List(ctx context.Context, orgID string, filter Filter) ([]*Entry, int, error)
}

// PostgresRepository implements [Repository] over the logs table.
type PostgresRepository struct {
	db postgres.DB
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(db postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
Insert appends one entry.

Parameters:
  - ctx: context.Context
  - entry: *Entry (ID and CreatedAt must be set)

Returns:
  - error: Database errors
*/
func (repository *PostgresRepository) Insert(ctx context.Context, entry *Entry) error {
	const query = `
		INSERT INTO logs (id, org_id, assistant_id, level, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("postgres_log_repo_encode_failed: %w", err)
	}

	var assistantID *string
	if entry.AssistantID != "" {
		assistantID = &entry.AssistantID
	}

	if _, err := repository.db.Exec(ctx, query,
		entry.ID,
		entry.OrgID,
		assistantID,
		string(entry.Level),
		entry.Message,
		metadata,
		entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("postgres_log_repo_insert_failed: %w", err)
	}

	return nil
}

/*
List returns one page of an organization's log, newest first, plus the total
number of matching entries.

Parameters:
  - ctx: context.Context
  - orgID: string
  - filter: Filter

Returns:
  - []*Entry: The page
  - int: Total matching entries
  - error: Database errors
*/
func (repository *PostgresRepository) List(ctx context.Context, orgID string, filter Filter) ([]*Entry, int, error) {
	where, args := listPredicate(orgID, filter)

	var total int
	if err := repository.db.QueryRow(ctx, "SELECT COUNT(*) FROM logs WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_log_repo_count_failed: %w", err)
	}

	query := `
		SELECT id, org_id, COALESCE(assistant_id::text, ''), level::text, message,
		       COALESCE(metadata, '{}'::jsonb)::text, created_at
		FROM logs
		WHERE ` + where + `
		ORDER BY created_at DESC
		LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)

	rows, err := repository.db.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_log_repo_list_failed: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var (
			entry    Entry
			level    string
			metadata string
		)
		if err := rows.Scan(&entry.ID, &entry.OrgID, &entry.AssistantID, &level, &entry.Message, &metadata, &entry.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("postgres_log_repo_scan_failed: %w", err)
		}
		entry.Level = Level(level)
		if err := json.Unmarshal([]byte(metadata), &entry.Metadata); err != nil {
			return nil, 0, fmt.Errorf("postgres_log_repo_decode_failed: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_log_repo_rows_failed: %w", err)
	}

	return entries, total, nil
}

// listPredicate builds the WHERE clause; org_id is always the first predicate.
func listPredicate(orgID string, filter Filter) (string, []any) {
	clauses := []string{"org_id = $1"}
	args := []any{orgID}

	if filter.Level != "" {
		args = append(args, string(filter.Level))
		clauses = append(clauses, "level = $"+strconv.Itoa(len(args)))
	}
	if filter.AssistantID != "" {
		args = append(args, filter.AssistantID)
		clauses = append(clauses, "assistant_id = $"+strconv.Itoa(len(args)))
	}

	return strings.Join(clauses, " AND "), args
}
