// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assistant

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/validate"
	"github.com/taibuivan/agentdesk/internal/workspace/activitylog"
	"github.com/taibuivan/agentdesk/pkg/pointer"
	"github.com/taibuivan/agentdesk/pkg/uuid"
)

// Input carries the fields of a new assistant.
type Input struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	SystemPrompt string         `json:"system_prompt"`
	Status       string         `json:"status"`
	Config       map[string]any `json:"config"`
}

// Patch carries a partial update. Nil fields are left unchanged.
type Patch struct {
	Name         *string        `json:"name"`
	Description  *string        `json:"description"`
	SystemPrompt *string        `json:"system_prompt"`
	Status       *string        `json:"status"`
	Config       map[string]any `json:"config"`
}

// Service implements the assistant use cases.
type Service struct {
	repository Repository
	recorder   activitylog.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository, recorder activitylog.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns one page of the organization's assistants.
func (service *Service) List(ctx context.Context, orgID string, filter Filter, limit, offset int) ([]*Assistant, int, error) {
	return service.repository.List(ctx, orgID, filter, limit, offset)
}

// Get returns an assistant of the organization.
func (service *Service) Get(ctx context.Context, orgID, id string) (*Assistant, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound("Assistant")
	}
	return service.repository.Get(ctx, orgID, id)
}

/*
Create adds an assistant to the organization.

Parameters:
  - ctx: context.Context
  - orgID: string (from the verified membership)
  - actorID: string (recorded as the creator)
  - input: Input

Returns:
  - *Assistant: The stored assistant
  - error: Validation or storage errors
*/
func (service *Service) Create(ctx context.Context, orgID, actorID string, input Input) (*Assistant, error) {
	now := service.now().UTC()
	assistant := &Assistant{
		ID:           uuid.New(),
		OrgID:        orgID,
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		SystemPrompt: input.SystemPrompt,
		Status:       StatusActive,
		Config:       input.Config,
		CreatedBy:    actorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.Status != "" {
		assistant.Status = Status(input.Status)
	}

	if err := validateAssistant(assistant); err != nil {
		return nil, err
	}

	if err := service.repository.Create(ctx, assistant); err != nil {
		return nil, err
	}

	service.recorder.Record(ctx, orgID, activitylog.LevelInfo, "assistant created", map[string]any{
		"assistant_id": assistant.ID,
		"name":         assistant.Name,
	})
	return assistant, nil
}

/*
Update applies a partial update.

Parameters:
  - ctx: context.Context
  - orgID: string
  - id: string
  - patch: Patch

Returns:
  - *Assistant: The updated assistant
  - error: NotFound, validation, or storage errors
*/
func (service *Service) Update(ctx context.Context, orgID, id string, patch Patch) (*Assistant, error) {
	assistant, err := service.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	assistant.Name = strings.TrimSpace(pointer.Fallback(patch.Name, assistant.Name))
	assistant.Description = pointer.Fallback(patch.Description, assistant.Description)
	assistant.SystemPrompt = pointer.Fallback(patch.SystemPrompt, assistant.SystemPrompt)
	assistant.Status = Status(pointer.Fallback(patch.Status, string(assistant.Status)))
	if patch.Config != nil {
		assistant.Config = patch.Config
	}
	assistant.UpdatedAt = service.now().UTC()

	if err := validateAssistant(assistant); err != nil {
		return nil, err
	}

	if err := service.repository.Update(ctx, assistant); err != nil {
		return nil, err
	}

	service.recorder.Record(ctx, orgID, activitylog.LevelInfo, "assistant updated", map[string]any{
		"assistant_id": assistant.ID,
	})
	return assistant, nil
}

// Archive retires an assistant. Archived assistants stay listable.
func (service *Service) Archive(ctx context.Context, orgID, id string) error {
	if !uuid.Valid(id) {
		return apperr.NotFound("Assistant")
	}

	if err := service.repository.Archive(ctx, orgID, id); err != nil {
		return err
	}

	service.recorder.Record(ctx, orgID, activitylog.LevelWarning, "assistant archived", map[string]any{
		"assistant_id": id,
	})
	service.logger.InfoContext(ctx, "assistant_archived", slog.String("org_id", orgID), slog.String("assistant_id", id))
	return nil
}

func validateAssistant(assistant *Assistant) error {
	if assistant.Config == nil {
		assistant.Config = map[string]any{}
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, assistant.Name).
		MaxLen(FieldName, assistant.Name, MaxNameLength).
		MaxLen(FieldDescription, assistant.Description, MaxDescriptionLength).
		MaxLen(FieldSystemPrompt, assistant.SystemPrompt, MaxSystemPromptLength).
		OneOf(FieldStatus, string(assistant.Status), string(StatusActive), string(StatusInactive), string(StatusArchived))
	return validator.Err()
}
