package settings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/httpx"
	"github.com/vinaykumar231/WOFR-Backend/internal/rbac"
)

// Handler exposes the settings file to master admins.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireUserType(rbac.MasterAdmin))
		r.Get("/", h.list)
		r.Put("/", h.update)
	})
}

// UpdateRequest changes one existing key.
type UpdateRequest struct {
	Key   string `json:"key" validate:"required,max=128"`
	Value string `json:"value" validate:"max=1024"`
}

type updateResponse struct {
	Message string            `json:"message"`
	Updated map[string]string `json:"updated_config"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.Success(w, http.StatusOK, h.service.All())
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	values, err := h.service.Update(r.Context(), req.Key, req.Value)
	if err != nil {
		httpx.Fail(w, h.logger, "update settings", err)
		return
	}
	httpx.Success(w, http.StatusOK, updateResponse{Message: "Config updated successfully", Updated: values})
}
