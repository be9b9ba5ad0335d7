package tenants

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/httpx"
	"github.com/vinaykumar231/WOFR-Backend/internal/rbac"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Handler manages tenant and tenant user endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountTenantRoutes registers tenant routes.
func (h *Handler) MountTenantRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireUserType(rbac.SuperAdmin))
		r.Post("/", h.createTenant)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireUserType(rbac.SuperAdmin, rbac.MasterAdmin))
		r.Get("/", h.listTenants)
		r.Get("/{id}", h.getTenant)
	})
}

// MountTenantUserRoutes registers tenant user routes.
func (h *Handler) MountTenantUserRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.Policy{
		UserTypes:  []rbac.UserType{rbac.SuperAdmin},
		Capability: &rbac.Capability{Module: "tenant_users", Action: "create"},
	})).Post("/", h.createTenantUser)
	r.With(h.rbac.Require(rbac.Policy{
		UserTypes:  []rbac.UserType{rbac.SuperAdmin},
		Capability: &rbac.Capability{Module: "tenant_users", Action: "view"},
	})).Get("/", h.listTenantUsers)
}

func (h *Handler) createTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	tenant, err := h.service.CreateTenant(r.Context(), actor.UserID, req)
	if err != nil {
		httpx.Fail(w, h.logger, "create tenant", err)
		return
	}
	httpx.Success(w, http.StatusCreated, tenant)
}

func (h *Handler) getTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.service.GetTenant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, h.logger, "get tenant", err)
		return
	}
	httpx.Success(w, http.StatusOK, tenant)
}

func (h *Handler) listTenants(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.PageFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	status, err := httpx.QueryStatus(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, meta, err := h.service.ListTenants(r.Context(), TenantListRequest{
		Name:    httpx.QueryString(r, "name"),
		Country: httpx.QueryString(r, "country"),
		Status:  status,
		SortBy:  r.URL.Query().Get("sort_by"),
		Order:   r.URL.Query().Get("order"),
		Page:    page,
	})
	if err != nil {
		httpx.Fail(w, h.logger, "list tenants", err)
		return
	}
	httpx.Paged(w, out, meta)
}

func (h *Handler) createTenantUser(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantUserRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.CreateTenantUser(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create tenant user", err)
		return
	}
	httpx.Success(w, http.StatusCreated, user)
}

func (h *Handler) listTenantUsers(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.PageFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	status, err := httpx.QueryStatus(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, meta, err := h.service.ListTenantUsers(r.Context(), TenantUserListRequest{
		TenantID:   httpx.QueryString(r, "tenant_id"),
		Department: httpx.QueryString(r, "department"),
		Status:     status,
		SortBy:     r.URL.Query().Get("sort_by"),
		Order:      r.URL.Query().Get("order"),
		Page:       page,
	})
	if err != nil {
		httpx.Fail(w, h.logger, "list tenant users", err)
		return
	}
	httpx.Paged(w, out, meta)
}
