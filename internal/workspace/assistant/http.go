// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assistant

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/agentdesk/internal/platform/middleware"
	requestutil "github.com/taibuivan/agentdesk/internal/platform/request"
	"github.com/taibuivan/agentdesk/internal/platform/respond"
	"github.com/taibuivan/agentdesk/internal/platform/sec"
	"github.com/taibuivan/agentdesk/internal/platform/validate"
	"github.com/taibuivan/agentdesk/pkg/pagination"
)

// Handler serves /api/v1/assistants.
type Handler struct {
	service *Service
	guard   *middleware.Guard
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, guard *middleware.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes returns the assistant routes.
//
// # Endpoints
//   - GET    /     : member  Lists assistants (?status=&q=&page=&limit=).
//   - GET    /{id} : member  Reads one assistant.
//   - POST   /     : admin   Creates an assistant.
//   - PATCH  /{id} : admin   Updates an assistant.
//   - DELETE /{id} : admin   Archives an assistant.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(readRoute chi.Router) {
		readRoute.Use(handler.guard.OrgRole(sec.RoleMember))
		readRoute.Get("/", handler.list)
		readRoute.Get("/{id}", handler.get)
	})

	router.Group(func(writeRoute chi.Router) {
		writeRoute.Use(handler.guard.OrgRole(sec.RoleAdmin))
		writeRoute.Post("/", handler.create)
		writeRoute.Patch("/{id}", handler.update)
		writeRoute.Delete("/{id}", handler.archive)
	})

	return router
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request)
	filter := Filter{Query: request.URL.Query().Get("q")}

	if raw := request.URL.Query().Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError(FieldStatus, "Must be one of: active, inactive, archived"))
			return
		}
		filter.Status = status
	}

	assistants, total, err := handler.service.List(request.Context(), membership.OrgID, filter, page.Limit, page.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, assistants, pagination.NewMeta(page.Page, page.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	assistant, err := handler.service.Get(request.Context(), membership.OrgID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, assistant)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	assistant, err := handler.service.Create(request.Context(), membership.OrgID, membership.UserID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, assistant)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	assistant, err := handler.service.Update(request.Context(), membership.OrgID, requestutil.ID(request, "id"), patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, assistant)
}

func (handler *Handler) archive(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Archive(request.Context(), membership.OrgID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
