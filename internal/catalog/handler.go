package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/httpx"
	"github.com/vinaykumar231/WOFR-Backend/internal/rbac"
)

// Handler manages catalog endpoints for one kind.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireUserType(rbac.MasterAdmin))
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Patch("/{id}/status", h.setStatus)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
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
	req := ListRequest{
		Status: status,
		Name:   httpx.QueryString(r, "name"),
		SortBy: r.URL.Query().Get("sort_by"),
		Order:  r.URL.Query().Get("order"),
		Page:   page,
	}
	entities, meta, err := h.service.List(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "list "+string(h.service.Kind()), err)
		return
	}
	httpx.Paged(w, entities, meta)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entity, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get "+string(h.service.Kind()), err)
		return
	}
	httpx.Success(w, http.StatusOK, entity)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entity, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create "+string(h.service.Kind()), err)
		return
	}
	httpx.Success(w, http.StatusCreated, entity)
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
	entity, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Fail(w, h.logger, "update "+string(h.service.Kind()), err)
		return
	}
	httpx.Success(w, http.StatusOK, entity)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req StatusRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entity, err := h.service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		httpx.Fail(w, h.logger, "set "+string(h.service.Kind())+" status", err)
		return
	}
	httpx.Success(w, http.StatusOK, entity)
}
