// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tool

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/agentdesk/internal/platform/middleware"
	requestutil "github.com/taibuivan/agentdesk/internal/platform/request"
	"github.com/taibuivan/agentdesk/internal/platform/respond"
	"github.com/taibuivan/agentdesk/internal/platform/sec"
	"github.com/taibuivan/agentdesk/pkg/convert"
	"github.com/taibuivan/agentdesk/pkg/pagination"
	"github.com/taibuivan/agentdesk/pkg/query"
)

// Handler serves /api/v1/tools.
type Handler struct {
	service *Service
	guard   *middleware.Guard
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, guard *middleware.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes returns the tool routes.
//
// # Endpoints
//   - GET    /             : member  Lists tools (?type=a,b&enabled=&page=&limit=).
//   - GET    /{id}         : member  Reads one tool.
//   - POST   /             : admin   Creates a tool.
//   - PATCH  /{id}         : admin   Updates a tool.
//   - POST   /{id}/toggle  : admin   Flips the enabled flag.
//   - DELETE /{id}         : admin   Deletes a tool.
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
		writeRoute.Post("/{id}/toggle", handler.toggle)
		writeRoute.Delete("/{id}", handler.delete)
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
	values := request.URL.Query()

	filter := Filter{
		Types:   query.StringSlice(values.Get("type")),
		Enabled: convert.OptionalBool(values.Get("enabled")),
	}

	tools, total, err := handler.service.List(request.Context(), membership.OrgID, filter, page.Limit, page.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, tools, pagination.NewMeta(page.Page, page.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tool, err := handler.service.Get(request.Context(), membership.OrgID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tool)
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

	tool, err := handler.service.Create(request.Context(), membership.OrgID, membership.UserID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, tool)
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

	tool, err := handler.service.Update(request.Context(), membership.OrgID, requestutil.ID(request, "id"), patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tool)
}

type toggleResponse struct {
	Enabled bool `json:"enabled"`
}

func (handler *Handler) toggle(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	enabled, err := handler.service.Toggle(request.Context(), membership.OrgID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, toggleResponse{Enabled: enabled})
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), membership.OrgID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
