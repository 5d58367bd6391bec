// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package activitylog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	requestutil "github.com/taibuivan/agentdesk/internal/platform/request"
	"github.com/taibuivan/agentdesk/internal/platform/respond"
	"github.com/taibuivan/agentdesk/pkg/pagination"
)

// Handler serves the activity log.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the log routes. The caller mounts them behind the admin gate.
//
// # Endpoints
//   - GET / : Lists entries, newest first (?level=&assistantId=&page=&limit=).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.list)
	return router
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request)
	filter := Filter{
		AssistantID: request.URL.Query().Get("assistantId"),
		Limit:       page.Limit,
		Offset:      page.Offset(),
	}

	if raw := request.URL.Query().Get("level"); raw != "" {
		level, err := ParseLevel(raw)
		if err != nil {
			respond.Error(writer, request, apperr.ValidationError("Validation failed", apperr.FieldError{
				Field:   "level",
				Message: "Must be one of: debug, info, warning, error",
			}))
			return
		}
		filter.Level = level
	}

	entries, total, err := handler.service.List(request.Context(), membership.OrgID, filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(page.Page, page.Limit, total))
}
