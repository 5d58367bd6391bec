// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package org

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/middleware"
	requestutil "github.com/taibuivan/agentdesk/internal/platform/request"
	"github.com/taibuivan/agentdesk/internal/platform/respond"
	"github.com/taibuivan/agentdesk/internal/platform/sec"
	"github.com/taibuivan/agentdesk/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the organization and membership endpoints.
type Handler struct {
	orgService *Service
	guard      *middleware.Guard
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, guard *middleware.Guard) *Handler {
	return &Handler{orgService: service, guard: guard}
}

// CollectionRoutes serves the caller's own organizations. Only the identity
// gate applies, since no single organization is targeted.
//
// # Endpoints
//   - GET  /       : Lists the caller's organizations.
//   - POST /       : Creates an organization owned by the caller.
//   - GET  /status : Reports whether the caller must create one first.
func (handler *Handler) CollectionRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(handler.guard.Authenticated())

	router.Get("/", handler.listOrganizations)
	router.Post("/", handler.createOrganization)
	router.Get("/status", handler.organizationStatus)

	return router
}

// OrganizationRoutes serves one organization, chosen by the caller via the
// orgId query parameter, the X-Org-ID header, or an orgId body field.
//
// # Endpoints
//   - GET    /                  : member  Reads the organization.
//   - PATCH  /                  : admin   Renames it.
//   - DELETE /                  : owner   Deletes it with everything it owns.
//   - GET    /members           : member  Lists members.
//   - POST   /members           : admin   Adds an existing account.
//   - PATCH  /members/{userID}  : admin   Changes a member's role.
//   - DELETE /members/{userID}  : admin   Removes a member.
func (handler *Handler) OrganizationRoutes() chi.Router {
	router := chi.NewRouter()

	member := handler.guard.OrgRole(sec.RoleMember)
	admin := handler.guard.OrgRole(sec.RoleAdmin)
	owner := handler.guard.OrgRole(sec.RoleOwner)

	router.With(member).Get("/", handler.getOrganization)
	router.With(admin).Patch("/", handler.renameOrganization)
	router.With(owner).Delete("/", handler.deleteOrganization)

	router.Route("/members", func(members chi.Router) {
		members.With(member).Get("/", handler.listMembers)
		members.With(admin).Post("/", handler.addMember)
		members.With(admin).Patch("/{userID}", handler.changeRole)
		members.With(admin).Delete("/{userID}", handler.removeMember)
	})

	return router
}

// # Request Payloads

type createOrganizationRequest struct {
	Name string `json:"name"`
}

type renameOrganizationRequest struct {
	Name string `json:"name"`
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

type organizationStatus struct {
	HasOrganizations bool `json:"has_organizations"`
}

type organizationList struct {
	Organizations []*Summary `json:"organizations"`

	// RequiresOrganization tells the client to send the user to the
	// organization creation page.
	RequiresOrganization bool `json:"requires_organization"`
}

// # Organizations

func (handler *Handler) listOrganizations(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	organizations, err := handler.orgService.ListForUser(request.Context(), identity.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, organizationList{
		Organizations:        organizations,
		RequiresOrganization: len(organizations) == 0,
	})
}

func (handler *Handler) organizationStatus(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	hasOrganizations, err := handler.orgService.HasOrganizations(request.Context(), identity.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, organizationStatus{HasOrganizations: hasOrganizations})
}

func (handler *Handler) createOrganization(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createOrganizationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.orgService.Create(request.Context(), identity, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, summary)
}

func (handler *Handler) getOrganization(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	organization, err := handler.orgService.Get(request.Context(), membership.OrgID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, Summary{Organization: *organization, Role: membership.Role})
}

func (handler *Handler) renameOrganization(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input renameOrganizationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	organization, err := handler.orgService.Rename(request.Context(), membership.OrgID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, organization)
}

func (handler *Handler) deleteOrganization(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.orgService.Delete(request.Context(), membership.OrgID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Members

func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	members, err := handler.orgService.ListMembers(request.Context(), membership.OrgID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, members)
}

func (handler *Handler) addMember(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addMemberRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := parseRoleField(input.Role, sec.RoleMember)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.orgService.AddMember(request.Context(), membership, input.Email, role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

func (handler *Handler) changeRole(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changeRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := parseRoleField(input.Role, "")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.Param(request, "userID")
	if err := handler.orgService.ChangeRole(request.Context(), membership, userID, role); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) removeMember(writer http.ResponseWriter, request *http.Request) {
	membership, err := requestutil.RequiredMembership(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.Param(request, "userID")
	if err := handler.orgService.RemoveMember(request.Context(), membership, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// parseRoleField validates a role from a request body. An empty value takes
// fallback; an empty fallback makes the field required.
func parseRoleField(value string, fallback sec.Role) (sec.Role, error) {
	if value == "" && fallback != "" {
		return fallback, nil
	}

	role, err := sec.ParseRole(value)
	if err != nil {
		return "", apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldRole,
			Message: "Must be one of: owner, admin, member",
		})
	}
	return role, nil
}
