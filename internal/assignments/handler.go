package assignments

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/httpx"
	"github.com/vinaykumar231/WOFR-Backend/internal/rbac"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Handler manages user and tenant user assignment endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountUserRoutes registers user assignment routes.
func (h *Handler) MountUserRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Authenticated())
		r.Get("/me", h.listMine)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireUserType(rbac.SuperAdmin, rbac.MasterAdmin))
		r.Post("/by-module", h.assignByModule)
		r.Post("/by-mappings", h.assignByMappings)
		r.Get("/", h.listUsers)
	})
}

// MountTenantUserRoutes registers tenant user assignment routes.
func (h *Handler) MountTenantUserRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireUserType(rbac.SuperAdmin))
		r.Post("/", h.assignTenantUser)
		r.Get("/", h.listTenantUsers)
	})
}

func (h *Handler) assignByModule(w http.ResponseWriter, r *http.Request) {
	var req ModuleRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	result, err := h.service.AssignUserToModule(r.Context(), req, actor.UserID)
	if err != nil {
		httpx.Fail(w, h.logger, "assign user to module", err)
		return
	}
	httpx.Success(w, http.StatusCreated, result)
}

func (h *Handler) assignByMappings(w http.ResponseWriter, r *http.Request) {
	var req MappingsRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	result, err := h.service.AssignUserToMappings(r.Context(), req, actor.UserID)
	if err != nil {
		httpx.Fail(w, h.logger, "assign user to mappings", err)
		return
	}
	httpx.Success(w, http.StatusCreated, result)
}

func (h *Handler) assignTenantUser(w http.ResponseWriter, r *http.Request) {
	var req TenantUserRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.AssignTenantUser(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "assign tenant user", err)
		return
	}
	httpx.Success(w, http.StatusCreated, created)
}

func nameFilters(r *http.Request) NameFilters {
	return NameFilters{
		ModuleName: httpx.QueryString(r, "module_name"),
		ActionName: httpx.QueryString(r, "action_name"),
		RoleName:   httpx.QueryString(r, "role_name"),
	}
}

func (h *Handler) userListRequest(r *http.Request) (UserListRequest, error) {
	page, err := httpx.PageFromQuery(r)
	if err != nil {
		return UserListRequest{}, err
	}
	includeInactive, err := httpx.QueryBool(r, "include_inactive")
	if err != nil {
		return UserListRequest{}, err
	}
	return UserListRequest{
		UserID:          httpx.QueryString(r, "user_id"),
		TenantID:        httpx.QueryString(r, "tenant_id"),
		Names:           nameFilters(r),
		IncludeInactive: includeInactive,
		SortBy:          r.URL.Query().Get("sort_by"),
		Order:           r.URL.Query().Get("order"),
		Page:            page,
	}, nil
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	req, err := h.userListRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.respondUserList(w, r, req)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	req, err := h.userListRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	req.UserID = &actor.UserID
	h.respondUserList(w, r, req)
}

func (h *Handler) respondUserList(w http.ResponseWriter, r *http.Request, req UserListRequest) {
	views, meta, err := h.service.ListUserAssignments(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "list user assignments", err)
		return
	}
	httpx.Paged(w, views, meta)
}

func (h *Handler) listTenantUsers(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.PageFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	includeInactive, err := httpx.QueryBool(r, "include_inactive")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	mappingID, err := httpx.QueryInt64(r, "mapping_id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views, meta, err := h.service.ListTenantUserAssignments(r.Context(), TenantUserListRequest{
		TenantUserID:    httpx.QueryString(r, "tenant_user_id"),
		TenantID:        httpx.QueryString(r, "tenant_id"),
		MappingID:       mappingID,
		Names:           nameFilters(r),
		IncludeInactive: includeInactive,
		SortBy:          r.URL.Query().Get("sort_by"),
		Order:           r.URL.Query().Get("order"),
		Page:            page,
	})
	if err != nil {
		httpx.Fail(w, h.logger, "list tenant user assignments", err)
		return
	}
	httpx.Paged(w, views, meta)
}
