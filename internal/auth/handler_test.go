package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

func newTestRouter(f fixture) http.Handler {
	h := NewHandler(slog.Default(), f.svc)
	r := chi.NewRouter()
	r.Route("/auth/v1", h.MountRoutes)
	return r
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func TestHandlerOTPStatusCodes(t *testing.T) {
	f := newFixture(t, stubLimits{SettingPreRegisterMaxAttempts: 1})
	router := newTestRouter(f)

	rec := post(router, "/auth/v1/pre-register/verify-otp", `{"email":"a@example.com","otp_code":"1234"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = post(router, "/auth/v1/pre-register/email-verification", `{"email":"a@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = post(router, "/auth/v1/pre-register/verify-otp", `{"email":"a@example.com","otp_code":"9999"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(router, "/auth/v1/pre-register/verify-otp", `{"email":"a@example.com","otp_code":"1234"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "too_many_attempts")

	rec = post(router, "/auth/v1/pre-register/email-verification", `{"email":"a@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	f.clock.t = f.clock.t.Add(10 * time.Minute)
	rec = post(router, "/auth/v1/pre-register/verify-otp", `{"email":"a@example.com","otp_code":"1234"}`)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestHandlerLoginFlow(t *testing.T) {
	f := newFixture(t, stubLimits{SettingLoginMaxAttempts: 1})
	router := newTestRouter(f)
	f.seedUser(t, "owner@example.com", "", "Secret123!", shared.StatusActive)

	rec := post(router, "/auth/v1/login", `{"email_or_phone":"owner@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(router, "/auth/v1/login", `{"email_or_phone":"owner@example.com","password":"Secret123!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "your email")

	rec = post(router, "/auth/v1/verify-login-otp", `{"email_or_phone":"owner@example.com","otp_code":"0000"}`)
	assert.Equal(t, http.StatusLocked, rec.Code)

	_, err := f.svc.Login(context.Background(), LoginRequest{EmailOrPhone: "owner@example.com", Password: "Secret123!"})
	require.NoError(t, err)
	rec = post(router, "/auth/v1/verify-login-otp", `{"email_or_phone":"owner@example.com","otp_code":"1234"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token":"`)
}

func TestHandlerRejectsMalformedBodies(t *testing.T) {
	router := newTestRouter(newFixture(t, nil))

	rec := post(router, "/auth/v1/register", `{"user_name":"Asha","user_email":"bad","phone":"+14155550100","user_password":"Secret123!","confirm_password":"Secret123!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(router, "/auth/v1/pre-register/verify-otp", `{"email":"a@example.com","otp_code":"12"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
