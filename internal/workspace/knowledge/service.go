// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package knowledge

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/validate"
	"github.com/taibuivan/agentdesk/internal/workspace/activitylog"
	"github.com/taibuivan/agentdesk/pkg/pointer"
	"github.com/taibuivan/agentdesk/pkg/slice"
	"github.com/taibuivan/agentdesk/pkg/uuid"
)

// Input carries the fields of a new document.
type Input struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata"`
}

// Patch carries a partial update.
type Patch struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Content     *string        `json:"content"`
	Metadata    map[string]any `json:"metadata"`
}

// Service implements the knowledge base use cases.
type Service struct {
	repository Repository
	recorder   activitylog.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository, recorder activitylog.Recorder, logger *slog.Logger) *Service {
	return &Service{repository: repository, recorder: recorder, logger: logger, now: time.Now}
}

// List returns one page of document summaries.
func (service *Service) List(ctx context.Context, orgID, query string, limit, offset int) ([]Summary, int, error) {
	documents, total, err := service.repository.List(ctx, orgID, strings.TrimSpace(query), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return slice.Map(documents, Summarize), total, nil
}

func (service *Service) Get(ctx context.Context, orgID, id string) (*Document, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound("Document")
	}
	return service.repository.Get(ctx, orgID, id)
}

func (service *Service) Create(ctx context.Context, orgID, actorID string, input Input) (*Document, error) {
	now := service.now().UTC()
	document := &Document{
		ID:          uuid.New(),
		OrgID:       orgID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Content:     input.Content,
		Metadata:    input.Metadata,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := validateDocument(document); err != nil {
		return nil, err
	}
	if err := service.repository.Create(ctx, document); err != nil {
		return nil, err
	}

	service.recorder.Record(ctx, orgID, activitylog.LevelInfo, "document created", map[string]any{
		"document_id": document.ID,
		"size":        len(document.Content),
	})
	return document, nil
}

func (service *Service) Update(ctx context.Context, orgID, id string, patch Patch) (*Document, error) {
	document, err := service.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	document.Name = strings.TrimSpace(pointer.Fallback(patch.Name, document.Name))
	document.Description = pointer.Fallback(patch.Description, document.Description)
	document.Content = pointer.Fallback(patch.Content, document.Content)
	if patch.Metadata != nil {
		document.Metadata = patch.Metadata
	}
	document.UpdatedAt = service.now().UTC()

	if err := validateDocument(document); err != nil {
		return nil, err
	}
	if err := service.repository.Update(ctx, document); err != nil {
		return nil, err
	}

	service.recorder.Record(ctx, orgID, activitylog.LevelInfo, "document updated", map[string]any{
		"document_id": document.ID,
	})
	return document, nil
}

// Delete removes a document permanently.
func (service *Service) Delete(ctx context.Context, orgID, id string) error {
	if !uuid.Valid(id) {
		return apperr.NotFound("Document")
	}
	if err := service.repository.Delete(ctx, orgID, id); err != nil {
		return err
	}

	service.recorder.Record(ctx, orgID, activitylog.LevelWarning, "document deleted", map[string]any{
		"document_id": id,
	})
	service.logger.InfoContext(ctx, "document_deleted", slog.String("org_id", orgID), slog.String("document_id", id))
	return nil
}

func validateDocument(document *Document) error {
	if document.Metadata == nil {
		document.Metadata = map[string]any{}
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, document.Name).
		MaxLen(FieldName, document.Name, MaxNameLength).
		MaxLen(FieldDescription, document.Description, MaxDescriptionLength).
		Custom(FieldContent, len(document.Content) > MaxContentLength, "Content exceeds 512 KiB")
	return validator.Err()
}
