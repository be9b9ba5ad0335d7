package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"

	"github.com/vinaykumar231/WOFR-Backend/internal/rbac"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
	"github.com/vinaykumar231/WOFR-Backend/internal/users"
	"github.com/vinaykumar231/WOFR-Backend/jobs"
)

// Users is the account directory the auth flows read and write.
type Users interface {
	FindByLogin(ctx context.Context, login string) (users.User, error)
	Create(ctx context.Context, u users.User) (users.User, error)
}

// Dispatcher queues OTP delivery.
type Dispatcher interface {
	EnqueueSendOTP(ctx context.Context, payload jobs.SendOTPPayload) (*asynq.TaskInfo, error)
}

// Limits supplies runtime-tunable integers.
type Limits interface {
	Int(key string, fallback int) int
}

// Config carries auth timings.
type Config struct {
	OTPTTL      time.Duration
	VerifiedTTL time.Duration
}

// Service implements registration, login and OTP verification.
type Service struct {
	users      Users
	codes      *OTPStore
	tokens     *TokenService
	dispatcher Dispatcher
	limits     Limits
	cfg        Config
	logger     *slog.Logger
	validate   *validator.Validate
	newCode    func() (string, error)
	hashCost   int
	now        func() time.Time
}

// NewService wires the auth service.
func NewService(users Users, codes *OTPStore, tokens *TokenService, dispatcher Dispatcher, limits Limits, cfg Config, logger *slog.Logger) *Service {
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 5 * time.Minute
	}
	if cfg.VerifiedTTL <= 0 {
		cfg.VerifiedTTL = 30 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:      users,
		codes:      codes,
		tokens:     tokens,
		dispatcher: dispatcher,
		limits:     limits,
		cfg:        cfg,
		logger:     logger,
		validate:   validator.New(),
		newCode:    generateCode,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// PreRegister issues a registration code for an unused email.
func (s *Service) PreRegister(ctx context.Context, req PreRegisterRequest) error {
	email := normalizeEmail(req.Email)
	if _, err := s.users.FindByLogin(ctx, email); err == nil {
		return fmt.Errorf("%w: email already registered", shared.ErrConflict)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return s.issue(ctx, PurposeRegister, email, ChannelEmail, email)
}

// VerifyPreRegisterOTP checks a registration code and marks the email verified.
func (s *Service) VerifyPreRegisterOTP(ctx context.Context, req VerifyEmailRequest) error {
	email := normalizeEmail(req.Email)
	record, err := s.codes.Fetch(ctx, PurposeRegister, email)
	if err != nil {
		return err
	}
	if record.Expired(s.now()) {
		return ErrOTPExpired
	}
	if record.Attempts >= s.maxAttempts(SettingPreRegisterMaxAttempts) {
		return ErrTooManyAttempts
	}
	if !codesEqual(record.Code, req.OTPCode) {
		if _, err := s.codes.IncrementAttempts(ctx, PurposeRegister, email); err != nil {
			return err
		}
		return ErrInvalidOTP
	}
	if err := s.codes.MarkVerified(ctx, email, s.cfg.VerifiedTTL); err != nil {
		return err
	}
	return s.codes.Delete(ctx, PurposeRegister, email)
}

// Register creates a super admin for a verified email.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (users.User, error) {
	email := normalizeEmail(req.Email)
	verified, err := s.codes.IsVerified(ctx, email)
	if err != nil {
		return users.User{}, err
	}
	if !verified {
		return users.User{}, ErrEmailNotVerified
	}
	if req.Password != req.ConfirmPassword {
		return users.User{}, fmt.Errorf("%w: passwords do not match", shared.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return users.User{}, fmt.Errorf("auth: hash password: %w", err)
	}
	created, err := s.users.Create(ctx, users.User{
		Username:         strings.TrimSpace(req.Username),
		Email:            email,
		PhoneNumber:      strings.TrimSpace(req.Phone),
		OrganizationName: strings.TrimSpace(req.OrganizationName),
		PasswordHash:     string(hash),
		Status:           shared.StatusActive,
		UserType:         string(rbac.SuperAdmin),
		IsVerified:       true,
	})
	if err != nil {
		return users.User{}, err
	}
	if err := s.codes.ClearVerified(ctx, email); err != nil {
		s.logger.Warn("clear verified email", slog.String("user_id", created.UserID), slog.Any("error", err))
	}
	s.logger.Info("user registered", slog.String("user_id", created.UserID))
	return created, nil
}

// Login checks the password and sends a login code to the channel used to sign in.
func (s *Service) Login(ctx context.Context, req LoginRequest) (Channel, error) {
	channel, err := s.classify(req.EmailOrPhone)
	if err != nil {
		return "", err
	}
	user, err := s.users.FindByLogin(ctx, req.EmailOrPhone)
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", shared.ErrInvalidCredentials
	}
	if user.Status != shared.StatusActive {
		return "", fmt.Errorf("%w: account is inactive", shared.ErrForbidden)
	}
	recipient := user.Email
	if channel == ChannelSMS {
		recipient = user.PhoneNumber
	}
	if err := s.issue(ctx, PurposeLogin, user.UserID, channel, recipient); err != nil {
		return "", err
	}
	return channel, nil
}

// VerifyLoginOTP exchanges a valid login code for a bearer token.
func (s *Service) VerifyLoginOTP(ctx context.Context, req VerifyLoginRequest) (LoginResult, error) {
	if _, err := s.classify(req.EmailOrPhone); err != nil {
		return LoginResult{}, err
	}
	user, err := s.users.FindByLogin(ctx, req.EmailOrPhone)
	if err != nil {
		return LoginResult{}, err
	}
	record, err := s.codes.Fetch(ctx, PurposeLogin, user.UserID)
	if errors.Is(err, ErrOTPNotFound) {
		return LoginResult{}, ErrInvalidOTP
	}
	if err != nil {
		return LoginResult{}, err
	}
	if record.Locked {
		return LoginResult{}, ErrOTPLocked
	}
	if record.Expired(s.now()) {
		if err := s.codes.Delete(ctx, PurposeLogin, user.UserID); err != nil {
			return LoginResult{}, err
		}
		return LoginResult{}, ErrOTPExpired
	}
	if !codesEqual(record.Code, req.OTPCode) {
		attempts, err := s.codes.IncrementAttempts(ctx, PurposeLogin, user.UserID)
		if err != nil {
			return LoginResult{}, err
		}
		if attempts >= s.maxAttempts(SettingLoginMaxAttempts) {
			if err := s.codes.Lock(ctx, PurposeLogin, user.UserID); err != nil {
				return LoginResult{}, err
			}
			s.logger.Warn("login otp locked", slog.String("user_id", user.UserID), slog.Int("attempts", attempts))
			return LoginResult{}, ErrOTPLocked
		}
		return LoginResult{}, ErrInvalidOTP
	}
	if err := s.codes.Delete(ctx, PurposeLogin, user.UserID); err != nil {
		return LoginResult{}, err
	}
	token, expiresAt, err := s.tokens.Issue(user.UserID, user.UserType)
	if err != nil {
		return LoginResult{}, err
	}
	s.logger.Info("login verified", slog.String("user_id", user.UserID))
	return LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Email:     user.Email,
		Username:  user.Username,
		UserType:  user.UserType,
	}, nil
}

func (s *Service) issue(ctx context.Context, purpose Purpose, identifier string, channel Channel, recipient string) error {
	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("auth: generate otp: %w", err)
	}
	if _, err := s.codes.Store(ctx, purpose, identifier, code, s.cfg.OTPTTL); err != nil {
		return err
	}
	if s.dispatcher == nil {
		return nil
	}
	payload := jobs.SendOTPPayload{
		Channel:   string(channel),
		Recipient: recipient,
		Code:      code,
		Purpose:   string(purpose),
	}
	if _, err := s.dispatcher.EnqueueSendOTP(ctx, payload); err != nil {
		s.logger.Error("enqueue otp delivery", slog.String("purpose", string(purpose)), slog.Any("error", err))
		return ErrDeliveryUnavailable
	}
	return nil
}

func (s *Service) classify(login string) (Channel, error) {
	login = strings.TrimSpace(login)
	if s.validate.Var(login, "required,email") == nil {
		return ChannelEmail, nil
	}
	if s.validate.Var(login, "required,e164") == nil {
		return ChannelSMS, nil
	}
	return "", fmt.Errorf("%w: invalid email or phone format", shared.ErrInvalidInput)
}

func (s *Service) maxAttempts(key string) int {
	if s.limits == nil {
		return defaultMaxAttempts
	}
	if n := s.limits.Int(key, defaultMaxAttempts); n > 0 {
		return n
	}
	return defaultMaxAttempts
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

func codesEqual(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(given))) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
