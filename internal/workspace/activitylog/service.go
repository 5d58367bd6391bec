// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package activitylog

import (
	"context"
	"log/slog"
	"maps"
	"time"

	"github.com/taibuivan/agentdesk/internal/platform/ctxutil"
	"github.com/taibuivan/agentdesk/pkg/uuid"
)

// Recorder appends activity entries on behalf of other packages.
type Recorder interface {
	Record(ctx context.Context, orgID string, level Level, message string, metadata map[string]any)
}

// Service implements [Recorder] and the log listing use case.
type Service struct {
	repository Repository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger, now: time.Now}
}

/*
Record appends an entry to an organization's log.

Description: Recording is best-effort. The mutation that triggered it has
already committed, so a failed insert is logged and swallowed rather than
turned into an error response.

Parameters:
  - ctx: context.Context
  - orgID: string
  - level: Level
  - message: string
  - metadata: map[string]any (an "assistant_id" key links the entry to an assistant)
*/
func (service *Service) Record(ctx context.Context, orgID string, level Level, message string, metadata map[string]any) {
	entry := &Entry{
		ID:        uuid.New(),
		OrgID:     orgID,
		Level:     level,
		Message:   message,
		Metadata:  maps.Clone(metadata),
		CreatedAt: service.now().UTC(),
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]any{}
	}
	if assistantID, ok := metadata["assistant_id"].(string); ok {
		entry.AssistantID = assistantID
	}
	if identity := ctxutil.GetIdentity(ctx); identity != nil {
		entry.Metadata["actor_id"] = identity.ID
	}

	if err := service.repository.Insert(ctx, entry); err != nil {
		service.logger.WarnContext(ctx, "activity_log_record_failed",
			slog.String("org_id", orgID),
			slog.String("message", message),
			slog.String("request_id", ctxutil.GetRequestID(ctx)),
			slog.Any("error", err),
		)
	}
}

/*
List returns one page of an organization's log.

Parameters:
  - ctx: context.Context
  - orgID: string
  - filter: Filter

Returns:
  - []*Entry: The page
  - int: Total matching entries
  - error: Storage errors
*/
func (service *Service) List(ctx context.Context, orgID string, filter Filter) ([]*Entry, int, error) {
	return service.repository.List(ctx, orgID, filter)
}
