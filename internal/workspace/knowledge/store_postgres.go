// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/database/schema"
	"github.com/taibuivan/agentdesk/internal/platform/dberr"
	"github.com/taibuivan/agentdesk/internal/platform/postgres"
	"github.com/taibuivan/agentdesk/pkg/pointer"
)

// PostgresRepository implements [Repository] over the kb table.
type PostgresRepository struct {
	db postgres.DB
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(db postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var table = schema.WorkspaceKB

var selectColumns = fmt.Sprintf(
	"%s::text, %s::text, %s, %s, %s, %s::text, COALESCE(%s, ''), %s, %s",
	table.ID, table.OrgID, table.Name, table.Description, table.Content,
	table.Metadata, table.CreatedBy, table.CreatedAt, table.UpdatedAt,
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var (
		document Document
		metadata string
	)
	if err := row.Scan(
		&document.ID, &document.OrgID, &document.Name, &document.Description, &document.Content,
		&metadata, &document.CreatedBy, &document.CreatedAt, &document.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(metadata), &document.Metadata); err != nil {
		return nil, fmt.Errorf("kb_metadata_decode_failed: %w", err)
	}
	return &document, nil
}

// List returns one page of documents, most recently updated first.
func (repository *PostgresRepository) List(ctx context.Context, orgID, query string, limit, offset int) ([]*Document, int, error) {
	where := fmt.Sprintf("%s = $1", table.OrgID)
	args := []any{orgID}

	if query != "" {
		args = append(args, "%"+query+"%")
		where += fmt.Sprintf(" AND (%s ILIKE $2 OR %s ILIKE $2)", table.Name, table.Description)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, table.Table, where)
	if err := repository.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_kb_repo_count_failed: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s DESC LIMIT $%d OFFSET $%d`,
		selectColumns, table.Table, where, table.UpdatedAt, len(args)+1, len(args)+2,
	)
	rows, err := repository.db.Query(ctx, listQuery, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_kb_repo_list_failed: %w", err)
	}
	defer rows.Close()

	documents := make([]*Document, 0)
	for rows.Next() {
		document, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_kb_repo_scan_failed: %w", err)
		}
		documents = append(documents, document)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_kb_repo_rows_failed: %w", err)
	}

	return documents, total, nil
}

// Get returns a document, or apperr.NotFound.
func (repository *PostgresRepository) Get(ctx context.Context, orgID, id string) (*Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		selectColumns, table.Table, table.ID, table.OrgID,
	)

	document, err := scanDocument(repository.db.QueryRow(ctx, query, id, orgID))
	if err != nil {
		return nil, dberr.Wrap(err, "Document")
	}
	return document, nil
}

// Create inserts a new document.
func (repository *PostgresRepository) Create(ctx context.Context, document *Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		table.Table, table.ID, table.OrgID, table.Name, table.Description, table.Content,
		table.Metadata, table.CreatedBy, table.CreatedAt, table.UpdatedAt,
	)

	metadata, err := json.Marshal(document.Metadata)
	if err != nil {
		return fmt.Errorf("kb_metadata_encode_failed: %w", err)
	}

	var createdBy *string
	if document.CreatedBy != "" {
		createdBy = pointer.To(document.CreatedBy)
	}

	if _, err := repository.db.Exec(ctx, query,
		document.ID,
		document.OrgID,
		document.Name,
		document.Description,
		document.Content,
		metadata,
		createdBy,
		document.CreatedAt,
		document.UpdatedAt,
	); err != nil {
		return dberr.Wrap(err, "Document")
	}
	return nil
}

// Update persists the mutable fields.
func (repository *PostgresRepository) Update(ctx context.Context, document *Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = $4, %s = $5, %s = $6, %s = $7
		WHERE %s = $1 AND %s = $2`,
		table.Table,
		table.Name, table.Description, table.Content, table.Metadata, table.UpdatedAt,
		table.ID, table.OrgID,
	)

	metadata, err := json.Marshal(document.Metadata)
	if err != nil {
		return fmt.Errorf("kb_metadata_encode_failed: %w", err)
	}

	tag, err := repository.db.Exec(ctx, query,
		document.ID, document.OrgID, document.Name, document.Description, document.Content, metadata, document.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Document")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Document")
	}
	return nil
}

// Delete removes a document permanently.
func (repository *PostgresRepository) Delete(ctx context.Context, orgID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, table.Table, table.ID, table.OrgID)

	tag, err := repository.db.Exec(ctx, query, id, orgID)
	if err != nil {
		return dberr.Wrap(err, "Document")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Document")
	}
	return nil
}
