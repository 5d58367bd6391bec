// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tool

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

// Input carries the fields of a new tool. Enabled defaults to true.
type Input struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Config      map[string]any `json:"config"`
	Enabled     *bool          `json:"enabled"`
}

// Patch carries a partial update.
type Patch struct {
	Name        *string        `json:"name"`
	Type        *string        `json:"type"`
	Description *string        `json:"description"`
	Config      map[string]any `json:"config"`
	Enabled     *bool          `json:"enabled"`
}

// Service implements the tool use cases.
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

func (service *Service) List(ctx context.Context, orgID string, filter Filter, limit, offset int) ([]*Tool, int, error) {
	return service.repository.List(ctx, orgID, filter, limit, offset)
}

func (service *Service) Get(ctx context.Context, orgID, id string) (*Tool, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound("Tool")
	}
	return service.repository.Get(ctx, orgID, id)
}

func (service *Service) Create(ctx context.Context, orgID, actorID string, input Input) (*Tool, error) {
	now := service.now().UTC()
	tool := &Tool{
		ID:          uuid.New(),
		OrgID:       orgID,
		Name:        strings.TrimSpace(input.Name),
		Type:        strings.ToLower(strings.TrimSpace(input.Type)),
		Description: input.Description,
		Config:      input.Config,
		Enabled:     pointer.Fallback(input.Enabled, true),
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := validateTool(tool); err != nil {
		return nil, err
	}
	if err := service.repository.Create(ctx, tool); err != nil {
		return nil, err
	}

	service.recorder.Record(ctx, orgID, activitylog.LevelInfo, "tool created", map[string]any{
		"tool_id": tool.ID,
		"type":    tool.Type,
	})
	return tool, nil
}

func (service *Service) Update(ctx context.Context, orgID, id string, patch Patch) (*Tool, error) {
	tool, err := service.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	tool.Name = strings.TrimSpace(pointer.Fallback(patch.Name, tool.Name))
	tool.Type = strings.ToLower(strings.TrimSpace(pointer.Fallback(patch.Type, tool.Type)))
	tool.Description = pointer.Fallback(patch.Description, tool.Description)
	tool.Enabled = pointer.Fallback(patch.Enabled, tool.Enabled)
	if patch.Config != nil {
		tool.Config = patch.Config
	}
	tool.UpdatedAt = service.now().UTC()

	if err := validateTool(tool); err != nil {
		return nil, err
	}
	if err := service.repository.Update(ctx, tool); err != nil {
		return nil, err
	}

	service.recorder.Record(ctx, orgID, activitylog.LevelInfo, "tool updated", map[string]any{
		"tool_id": tool.ID,
	})
	return tool, nil
}

// Toggle flips a tool on or off and returns the new state.
func (service *Service) Toggle(ctx context.Context, orgID, id string) (bool, error) {
	if !uuid.Valid(id) {
		return false, apperr.NotFound("Tool")
	}

	enabled, err := service.repository.Toggle(ctx, orgID, id)
	if err != nil {
		return false, err
	}

	message := "tool disabled"
	if enabled {
		message = "tool enabled"
	}
	service.recorder.Record(ctx, orgID, activitylog.LevelInfo, message, map[string]any{"tool_id": id})
	return enabled, nil
}

func (service *Service) Delete(ctx context.Context, orgID, id string) error {
	if !uuid.Valid(id) {
		return apperr.NotFound("Tool")
	}
	if err := service.repository.Delete(ctx, orgID, id); err != nil {
		return err
	}

	service.recorder.Record(ctx, orgID, activitylog.LevelWarning, "tool deleted", map[string]any{"tool_id": id})
	service.logger.InfoContext(ctx, "tool_deleted", slog.String("org_id", orgID), slog.String("tool_id", id))
	return nil
}

func validateTool(tool *Tool) error {
	if tool.Config == nil {
		tool.Config = map[string]any{}
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, tool.Name).
		MaxLen(FieldName, tool.Name, MaxNameLength).
		Required(FieldType, tool.Type).
		MaxLen(FieldType, tool.Type, MaxTypeLength).
		Slug(FieldType, tool.Type).
		MaxLen(FieldDescription, tool.Description, MaxDescriptionLength)
	return validator.Err()
}
