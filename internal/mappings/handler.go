package mappings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/httpx"
	"github.com/vinaykumar231/WOFR-Backend/internal/rbac"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Handler manages mapping endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers mapping routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.Policy{
			UserTypes:  []rbac.UserType{rbac.MasterAdmin, rbac.SuperAdmin},
			Capability: &rbac.Capability{Module: "mappings", Action: "view"},
		}))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireUserType(rbac.MasterAdmin))
		r.Post("/", h.createBulk)
		r.Patch("/status", h.setStatusBulk)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
	})
}

func (h *Handler) createBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkCreateRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	result, err := h.service.CreateBulk(r.Context(), req, actor.UserID)
	if err != nil {
		httpx.Fail(w, h.logger, "create mappings", err)
		return
	}
	httpx.Success(w, http.StatusCreated, result)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	mapping, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Fail(w, h.logger, "update mapping", err)
		return
	}
	httpx.Success(w, http.StatusOK, mapping)
}

func (h *Handler) setStatusBulk(w http.ResponseWriter, r *http.Request) {
	var req StatusBulkRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.SetStatusBulk(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "set mapping status", err)
		return
	}
	httpx.Success(w, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	mapping, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get mapping", err)
		return
	}
	httpx.Success(w, http.StatusOK, mapping)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.PageFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	views, meta, err := h.service.List(r.Context(), ListRequest{
		ModuleName: httpx.QueryString(r, "module_name"),
		ActionName: httpx.QueryString(r, "action_name"),
		RoleName:   httpx.QueryString(r, "role_name"),
		SortBy:     q.Get("sort_by"),
		Order:      q.Get("order"),
		Page:       page,
	})
	if err != nil {
		httpx.Fail(w, h.logger, "list mappings", err)
		return
	}
	httpx.Paged(w, views, meta)
}
