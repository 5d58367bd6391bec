// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package activitylog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/agentdesk/internal/platform/ctxutil"
	"github.com/taibuivan/agentdesk/internal/platform/sec"
	"github.com/taibuivan/agentdesk/internal/workspace/activitylog"
)

const orgID = "0190f5e2-7c4a-7000-8000-000000000001"

func TestPostgresRepository_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := activitylog.NewRepository(mock)
	entry := &activitylog.Entry{
		ID:          "log-1",
		OrgID:       orgID,
		AssistantID: "asst-1",
		Level:       activitylog.LevelInfo,
		Message:     "assistant created",
		Metadata:    map[string]any{"name": "Helper"},
		CreatedAt:   time.Now(),
	}

	mock.ExpectExec("INSERT INTO logs").
		WithArgs("log-1", orgID, pgxmock.AnyArg(), "info", "assistant created", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Insert(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListFiltered(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := activitylog.NewRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM logs WHERE org_id = $1 AND level = $2")).
		WithArgs(orgID, "error").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $3 OFFSET $4")).
		WithArgs(orgID, "error", 20, 0).
		WillReturnRows(mock.NewRows([]string{"id", "org_id", "assistant_id", "level", "message", "metadata", "created_at"}).
			AddRow("log-1", orgID, "", "error", "tool failed", `{"tool":"search"}`, now))

	entries, total, err := repo.List(context.Background(), orgID, activitylog.Filter{Level: activitylog.LevelError, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, activitylog.LevelError, entries[0].Level)
	assert.Equal(t, "search", entries[0].Metadata["tool"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// recordingRepository captures inserts and can be told to fail.
type recordingRepository struct {
	entries []*activitylog.Entry
	err     error
}

func (repository *recordingRepository) Insert(_ context.Context, entry *activitylog.Entry) error {
	if repository.err != nil {
		return repository.err
	}
	repository.entries = append(repository.entries, entry)
	return nil
}

func (repository *recordingRepository) List(_ context.Context, orgID string, _ activitylog.Filter) ([]*activitylog.Entry, int, error) {
	var matched []*activitylog.Entry
	for _, entry := range repository.entries {
		if entry.OrgID == orgID {
			matched = append(matched, entry)
		}
	}
	return matched, len(matched), nil
}

func TestService_RecordAttachesActorAndAssistant(t *testing.T) {
	repository := &recordingRepository{}
	service := activitylog.NewService(repository, slog.Default())

	ctx := ctxutil.WithIdentity(context.Background(), &sec.Identity{ID: "user-1"})
	metadata := map[string]any{"assistant_id": "asst-1"}
	service.Record(ctx, orgID, activitylog.LevelInfo, "assistant updated", metadata)

	require.Len(t, repository.entries, 1)
	entry := repository.entries[0]
	assert.Equal(t, "asst-1", entry.AssistantID)
	assert.Equal(t, "user-1", entry.Metadata["actor_id"])
	assert.NotContains(t, metadata, "actor_id")
}

func TestService_RecordFailureIsLoggedNotReturned(t *testing.T) {
	var buffer bytes.Buffer
	repository := &recordingRepository{err: errors.New("insert failed")}
	service := activitylog.NewService(repository, slog.New(slog.NewJSONHandler(&buffer, nil)))

	service.Record(context.Background(), orgID, activitylog.LevelInfo, "tool created", nil)

	assert.Contains(t, buffer.String(), "activity_log_record_failed")
}

func TestHandler_ListScopesToMembership(t *testing.T) {
	repository := &recordingRepository{entries: []*activitylog.Entry{
		{ID: "a", OrgID: orgID, Level: activitylog.LevelInfo, Message: "mine"},
		{ID: "b", OrgID: "other-org", Level: activitylog.LevelInfo, Message: "theirs"},
	}}
	handler := activitylog.NewHandler(activitylog.NewService(repository, slog.Default()))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithMembership(request.Context(), &sec.Membership{OrgID: orgID, Role: sec.RoleAdmin}))
	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "mine")
	assert.NotContains(t, recorder.Body.String(), "theirs")
	assert.Contains(t, recorder.Body.String(), `"total":1`)
}

func TestHandler_RejectsUnknownLevel(t *testing.T) {
	handler := activitylog.NewHandler(activitylog.NewService(&recordingRepository{}, slog.Default()))

	request := httptest.NewRequest(http.MethodGet, "/?level=fatal", nil)
	request = request.WithContext(ctxutil.WithMembership(request.Context(), &sec.Membership{OrgID: orgID, Role: sec.RoleAdmin}))
	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_WithoutMembershipIsForbidden(t *testing.T) {
	handler := activitylog.NewHandler(activitylog.NewService(&recordingRepository{}, slog.Default()))

	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}
