// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assistant_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/workspace/activitylog"
	"github.com/taibuivan/agentdesk/internal/workspace/assistant"
	"github.com/taibuivan/agentdesk/pkg/pointer"
)

const (
	orgAcme      = "0190f5e2-7c4a-7000-8000-0000000000a1"
	orgGlobex    = "0190f5e2-7c4a-7000-8000-0000000000b2"
	assistantOne = "0190f5e2-7c4a-7000-8000-0000000000c3"
)

func appCode(t *testing.T, err error) string {
	t.Helper()

	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	return appErr.Code
}

// # Fakes

type memoryRepository struct {
	mu         sync.Mutex
	assistants map[string]*assistant.Assistant
	err        error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{assistants: map[string]*assistant.Assistant{}}
}

func (repository *memoryRepository) List(_ context.Context, orgID string, filter assistant.Filter, limit, offset int) ([]*assistant.Assistant, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.err != nil {
		return nil, 0, repository.err
	}

	matched := make([]*assistant.Assistant, 0)
	for _, item := range repository.assistants {
		if item.OrgID != orgID || (filter.Status != "" && item.Status != filter.Status) {
			continue
		}
		matched = append(matched, item)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	if offset >= total {
		return []*assistant.Assistant{}, total, nil
	}
	return matched[offset:min(offset+limit, total)], total, nil
}

func (repository *memoryRepository) Get(_ context.Context, orgID, id string) (*assistant.Assistant, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.err != nil {
		return nil, repository.err
	}

	item, ok := repository.assistants[id]
	if !ok || item.OrgID != orgID {
		return nil, apperr.NotFound("Assistant")
	}
	copied := *item
	return &copied, nil
}

func (repository *memoryRepository) Create(_ context.Context, item *assistant.Assistant) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.err != nil {
		return repository.err
	}
	copied := *item
	repository.assistants[item.ID] = &copied
	return nil
}

func (repository *memoryRepository) Update(_ context.Context, item *assistant.Assistant) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	stored, ok := repository.assistants[item.ID]
	if !ok || stored.OrgID != item.OrgID {
		return apperr.NotFound("Assistant")
	}
	copied := *item
	repository.assistants[item.ID] = &copied
	return nil
}

func (repository *memoryRepository) Archive(_ context.Context, orgID, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	stored, ok := repository.assistants[id]
	if !ok || stored.OrgID != orgID {
		return apperr.NotFound("Assistant")
	}
	stored.Status = assistant.StatusArchived
	return nil
}

type recordedEntry struct {
	orgID   string
	level   activitylog.Level
	message string
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries []recordedEntry
}

func (recorder *memoryRecorder) Record(_ context.Context, orgID string, level activitylog.Level, message string, _ map[string]any) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.entries = append(recorder.entries, recordedEntry{orgID, level, message})
}

func newTestService() (*assistant.Service, *memoryRepository, *memoryRecorder, *bytes.Buffer) {
	repository := newMemoryRepository()
	recorder := &memoryRecorder{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return assistant.NewService(repository, recorder, logger), repository, recorder, &logs
}

// # Service

func TestService_Create(t *testing.T) {
	service, repository, recorder, _ := newTestService()

	created, err := service.Create(context.Background(), orgAcme, "user-admin", assistant.Input{
		Name:         "  Helpdesk  ",
		SystemPrompt: "Answer billing questions.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Helpdesk", created.Name)
	assert.Equal(t, assistant.StatusActive, created.Status)
	assert.Equal(t, orgAcme, created.OrgID)
	assert.Equal(t, "user-admin", created.CreatedBy)
	assert.NotNil(t, created.Config)
	assert.Contains(t, repository.assistants, created.ID)

	require.Len(t, recorder.entries, 1)
	assert.Equal(t, recordedEntry{orgAcme, activitylog.LevelInfo, "assistant created"}, recorder.entries[0])
}

func TestService_CreateValidation(t *testing.T) {
	service, repository, recorder, _ := newTestService()

	cases := map[string]assistant.Input{
		"missing name":   {Name: "   "},
		"unknown status": {Name: "Helpdesk", Status: "paused"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := service.Create(context.Background(), orgAcme, "user-admin", input)
			assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
		})
	}
	assert.Empty(t, repository.assistants)
	assert.Empty(t, recorder.entries)
}

func TestService_GetIsScopedByOrganization(t *testing.T) {
	service, _, _, _ := newTestService()

	created, err := service.Create(context.Background(), orgAcme, "user-admin", assistant.Input{Name: "Helpdesk"})
	require.NoError(t, err)

	_, err = service.Get(context.Background(), orgGlobex, created.ID)
	assert.Equal(t, "NOT_FOUND", appCode(t, err))

	_, err = service.Get(context.Background(), orgAcme, "not-a-uuid")
	assert.Equal(t, "NOT_FOUND", appCode(t, err))
}

func TestService_UpdateKeepsUntouchedFields(t *testing.T) {
	service, _, recorder, _ := newTestService()

	created, err := service.Create(context.Background(), orgAcme, "user-admin", assistant.Input{
		Name:         "Helpdesk",
		SystemPrompt: "Be brief.",
		Config:       map[string]any{"model": "small"},
	})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), orgAcme, created.ID, assistant.Patch{
		Status: pointer.To("inactive"),
	})
	require.NoError(t, err)
	assert.Equal(t, assistant.StatusInactive, updated.Status)
	assert.Equal(t, "Be brief.", updated.SystemPrompt)
	assert.Equal(t, "small", updated.Config["model"])

	_, err = service.Update(context.Background(), orgAcme, created.ID, assistant.Patch{Name: pointer.To("")})
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))

	require.Len(t, recorder.entries, 2)
	assert.Equal(t, "assistant updated", recorder.entries[1].message)
}

func TestService_Archive(t *testing.T) {
	service, repository, recorder, logs := newTestService()

	created, err := service.Create(context.Background(), orgAcme, "user-admin", assistant.Input{Name: "Helpdesk"})
	require.NoError(t, err)

	assert.Equal(t, "NOT_FOUND", appCode(t, service.Archive(context.Background(), orgGlobex, created.ID)))
	require.NoError(t, service.Archive(context.Background(), orgAcme, created.ID))

	assert.Equal(t, assistant.StatusArchived, repository.assistants[created.ID].Status)
	assert.Equal(t, activitylog.LevelWarning, recorder.entries[len(recorder.entries)-1].level)
	assert.Contains(t, logs.String(), `"msg":"assistant_archived"`)
}

func TestService_ListPropagatesStoreFailure(t *testing.T) {
	service, repository, _, _ := newTestService()
	repository.err = errors.New("connection reset")

	_, _, err := service.List(context.Background(), orgAcme, assistant.Filter{}, 20, 0)
	assert.ErrorContains(t, err, "connection reset")
}
