package access

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/httpx"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Handler exposes capability lookups for the authenticated actor.
type Handler struct {
	logger   *slog.Logger
	resolver *Resolver
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, resolver *Resolver) *Handler {
	return &Handler{logger: logger, resolver: resolver}
}

// MountRoutes registers access routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.me)
	r.Get("/check", h.check)
}

func (h *Handler) subject(r *http.Request) (Subject, bool) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		return Subject{}, false
	}
	tenantID := actor.TenantID
	if q := httpx.QueryString(r, "tenant_id"); q != nil {
		tenantID = *q
	}
	return Subject{UserID: actor.UserID, TenantID: tenantID}, true
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subject(r)
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	set, err := h.resolver.Resolve(r.Context(), subject)
	if err != nil {
		httpx.Fail(w, h.logger, "access me", err)
		return
	}
	httpx.Success(w, http.StatusOK, set)
}

type checkResponse struct {
	Module  string `json:"module"`
	Action  string `json:"action"`
	Allowed bool   `json:"allowed"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subject(r)
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	module, action := httpx.QueryString(r, "module"), httpx.QueryString(r, "action")
	if module == nil || action == nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	allowed, err := h.resolver.Can(r.Context(), subject, *module, *action)
	if err != nil {
		httpx.Fail(w, h.logger, "access check", err)
		return
	}
	httpx.Success(w, http.StatusOK, checkResponse{Module: *module, Action: *action, Allowed: allowed})
}
