package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/httpx"
)

// Handler wires HTTP endpoints for registration and OTP login.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the public auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/pre-register/email-verification", h.preRegister)
	r.Post("/pre-register/verify-otp", h.verifyPreRegister)
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/verify-login-otp", h.verifyLogin)
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) preRegister(w http.ResponseWriter, r *http.Request) {
	var req PreRegisterRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.PreRegister(r.Context(), req); err != nil {
		httpx.Fail(w, h.logger, "pre-register", err, problemMappings...)
		return
	}
	httpx.Success(w, http.StatusOK, messageResponse{Message: "OTP sent to your email for verification"})
}

func (h *Handler) verifyPreRegister(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.VerifyPreRegisterOTP(r.Context(), req); err != nil {
		httpx.Fail(w, h.logger, "verify pre-register otp", err, problemMappings...)
		return
	}
	httpx.Success(w, http.StatusOK, messageResponse{Message: "Email verified. You can now proceed with registration."})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "register", err, problemMappings...)
		return
	}
	httpx.Success(w, http.StatusCreated, user)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	channel, err := h.service.Login(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "login", err, problemMappings...)
		return
	}
	msg := "OTP sent successfully to your email"
	if channel == ChannelSMS {
		msg = "OTP sent successfully to your phone"
	}
	httpx.Success(w, http.StatusOK, messageResponse{Message: msg})
}

func (h *Handler) verifyLogin(w http.ResponseWriter, r *http.Request) {
	var req VerifyLoginRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.VerifyLoginOTP(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "verify login otp", err, problemMappings...)
		return
	}
	httpx.Success(w, http.StatusOK, result)
}
