package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/httpx"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Settings keys holding the OTP attempt limits.
const (
	SettingPreRegisterMaxAttempts = "PRE_REGISTER_MAX_OTP_ATTEMPT_COUNT"
	SettingLoginMaxAttempts       = "LOGIN_MAX_OTP_ATTEMPT_COUNT"

	defaultMaxAttempts = 3
)

var (
	// ErrOTPNotFound indicates no code is pending for the identifier.
	ErrOTPNotFound = errors.New("otp not found")
	// ErrOTPExpired indicates the code is past its expiry.
	ErrOTPExpired = errors.New("otp has expired")
	// ErrTooManyAttempts indicates the pre-registration attempt limit was reached.
	ErrTooManyAttempts = errors.New("too many otp attempts")
	// ErrOTPLocked indicates the login code was frozen after repeated failures.
	ErrOTPLocked = errors.New("otp is locked")
	// ErrDeliveryUnavailable indicates the code could not be queued for delivery.
	ErrDeliveryUnavailable = errors.New("otp delivery unavailable")

	ErrInvalidOTP       = fmt.Errorf("%w: invalid otp", shared.ErrUnauthorized)
	ErrInvalidToken     = fmt.Errorf("%w: invalid token", shared.ErrUnauthorized)
	ErrEmailNotVerified = fmt.Errorf("%w: email is not verified", shared.ErrForbidden)
)

// problemMappings extends the shared taxonomy with the OTP statuses.
var problemMappings = []httpx.Mapping{
	{Err: ErrOTPExpired, Status: http.StatusGone, Type: "otp_expired", Title: "OTP Expired"},
	{Err: ErrTooManyAttempts, Status: http.StatusTooManyRequests, Type: "too_many_attempts", Title: "Too Many Attempts"},
	{Err: ErrOTPLocked, Status: http.StatusLocked, Type: "otp_locked", Title: "OTP Locked"},
	{Err: ErrOTPNotFound, Status: http.StatusNotFound, Type: httpx.TypeNotFound, Title: "Not Found"},
	{Err: ErrDeliveryUnavailable, Status: http.StatusServiceUnavailable, Type: "delivery_unavailable", Title: "Service Unavailable"},
}

// PreRegisterRequest starts email verification.
type PreRegisterRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// VerifyEmailRequest confirms a pre-registration code.
type VerifyEmailRequest struct {
	Email   string `json:"email" validate:"required,email,max=255"`
	OTPCode string `json:"otp_code" validate:"required,len=4,numeric"`
}

// RegisterRequest creates a super admin account for a verified email.
type RegisterRequest struct {
	Username         string `json:"user_name" validate:"required,min=3,max=50"`
	Email            string `json:"user_email" validate:"required,email,max=255"`
	Phone            string `json:"phone" validate:"required,e164"`
	OrganizationName string `json:"organization_name" validate:"max=255"`
	Password         string `json:"user_password" validate:"required,min=8,max=72"`
	ConfirmPassword  string `json:"confirm_password" validate:"required"`
}

// LoginRequest checks credentials and triggers a login code.
type LoginRequest struct {
	EmailOrPhone string `json:"email_or_phone" validate:"required,max=255"`
	Password     string `json:"password" validate:"required"`
}

// VerifyLoginRequest exchanges a login code for a token.
type VerifyLoginRequest struct {
	EmailOrPhone string `json:"email_or_phone" validate:"required,max=255"`
	OTPCode      string `json:"otp_code" validate:"required,len=4,numeric"`
}

// LoginResult is returned once the login code is accepted.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	UserType  string    `json:"user_type"`
}

// Channel names how a code is delivered.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)
