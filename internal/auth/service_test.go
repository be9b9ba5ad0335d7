package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
	"github.com/vinaykumar231/WOFR-Backend/internal/users"
	"github.com/vinaykumar231/WOFR-Backend/jobs"
	_ "github.com/vinaykumar231/WOFR-Backend/testing"
)

type mockUsers struct {
	mu    sync.Mutex
	users []users.User
}

func (m *mockUsers) FindByLogin(ctx context.Context, login string) (users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, login) || u.PhoneNumber == login {
			return u, nil
		}
	}
	return users.User{}, fmt.Errorf("%w: no user registered with %s", shared.ErrNotFound, login)
}

func (m *mockUsers) Create(ctx context.Context, u users.User) (users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return users.User{}, fmt.Errorf("%w: email already registered", shared.ErrConflict)
		}
	}
	u.UserID = fmt.Sprintf("USR%07d", len(m.users)+1)
	m.users = append(m.users, u)
	return u, nil
}

type stubDispatcher struct {
	sent []jobs.SendOTPPayload
	err  error
}

func (d *stubDispatcher) EnqueueSendOTP(ctx context.Context, payload jobs.SendOTPPayload) (*asynq.TaskInfo, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.sent = append(d.sent, payload)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(d.sent))}, nil
}

type stubLimits map[string]int

func (l stubLimits) Int(key string, fallback int) int {
	if v, ok := l[key]; ok {
		return v
	}
	return fallback
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

type fixture struct {
	svc        *Service
	users      *mockUsers
	dispatcher *stubDispatcher
	tokens     *TokenService
	clock      *fakeClock
}

func newFixture(t *testing.T, limits stubLimits) fixture {
	t.Helper()
	store, _ := newTestStore(t)
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	store.WithClock(clock.Now)
	tokens, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	dir := &mockUsers{}
	dispatcher := &stubDispatcher{}
	svc := NewService(dir, store, tokens, dispatcher, limits, Config{OTPTTL: 5 * time.Minute}, slog.Default())
	svc.newCode = func() (string, error) { return "1234", nil }
	svc.hashCost = bcrypt.MinCost
	svc.now = clock.Now
	return fixture{svc: svc, users: dir, dispatcher: dispatcher, tokens: tokens, clock: clock}
}

func (f fixture) seedUser(t *testing.T, email, phone, password string, status shared.Status) users.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := f.users.Create(context.Background(), users.User{
		Username:     "owner",
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: string(hash),
		Status:       status,
		UserType:     "super_admin",
	})
	require.NoError(t, err)
	return u
}

func TestPreRegisterIssuesCode(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.svc.PreRegister(ctx, PreRegisterRequest{Email: "New@Example.com"}))
	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, jobs.SendOTPPayload{Channel: "email", Recipient: "new@example.com", Code: "1234", Purpose: "register"}, f.dispatcher.sent[0])

	f.seedUser(t, "taken@example.com", "", "Secret123!", shared.StatusActive)
	err := f.svc.PreRegister(ctx, PreRegisterRequest{Email: "taken@example.com"})
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestPreRegisterDeliveryFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.dispatcher.err = errors.New("redis down")

	err := f.svc.PreRegister(context.Background(), PreRegisterRequest{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrDeliveryUnavailable)
}

func TestVerifyPreRegisterLimitsAttempts(t *testing.T) {
	f := newFixture(t, stubLimits{SettingPreRegisterMaxAttempts: 2})
	ctx := context.Background()
	require.NoError(t, f.svc.PreRegister(ctx, PreRegisterRequest{Email: "a@example.com"}))

	for i := 0; i < 2; i++ {
		err := f.svc.VerifyPreRegisterOTP(ctx, VerifyEmailRequest{Email: "a@example.com", OTPCode: "9999"})
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}
	err := f.svc.VerifyPreRegisterOTP(ctx, VerifyEmailRequest{Email: "a@example.com", OTPCode: "1234"})
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	require.NoError(t, f.svc.PreRegister(ctx, PreRegisterRequest{Email: "a@example.com"}))
	assert.NoError(t, f.svc.VerifyPreRegisterOTP(ctx, VerifyEmailRequest{Email: "a@example.com", OTPCode: "1234"}))
}

func TestVerifyPreRegisterExpiredAndMissing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	err := f.svc.VerifyPreRegisterOTP(ctx, VerifyEmailRequest{Email: "a@example.com", OTPCode: "1234"})
	assert.ErrorIs(t, err, ErrOTPNotFound)

	require.NoError(t, f.svc.PreRegister(ctx, PreRegisterRequest{Email: "a@example.com"}))
	f.clock.t = f.clock.t.Add(6 * time.Minute)
	err = f.svc.VerifyPreRegisterOTP(ctx, VerifyEmailRequest{Email: "a@example.com", OTPCode: "1234"})
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestRegisterAfterVerification(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	req := RegisterRequest{
		Username:        "Asha",
		Email:           "asha@example.com",
		Phone:           "+14155550100",
		Password:        "Secret123!",
		ConfirmPassword: "Secret123!",
	}

	_, err := f.svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrEmailNotVerified)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	require.NoError(t, f.svc.PreRegister(ctx, PreRegisterRequest{Email: req.Email}))
	require.NoError(t, f.svc.VerifyPreRegisterOTP(ctx, VerifyEmailRequest{Email: req.Email, OTPCode: "1234"}))

	mismatch := req
	mismatch.ConfirmPassword = "Other123!"
	_, err = f.svc.Register(ctx, mismatch)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	user, err := f.svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "super_admin", user.UserType)
	assert.Equal(t, shared.StatusActive, user.Status)
	assert.True(t, user.IsVerified)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Secret123!")))

	_, err = f.svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.seedUser(t, "asha@example.com", "", "Secret123!", shared.StatusActive)
	require.NoError(t, f.svc.codes.MarkVerified(ctx, "asha@example.com", time.Minute))

	_, err := f.svc.Register(ctx, RegisterRequest{
		Username: "Asha", Email: "asha@example.com", Phone: "+14155550100",
		Password: "Secret123!", ConfirmPassword: "Secret123!",
	})
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestLoginIssuesTokenAfterOTP(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	user := f.seedUser(t, "owner@example.com", "+14155550100", "Secret123!", shared.StatusActive)

	channel, err := f.svc.Login(ctx, LoginRequest{EmailOrPhone: "owner@example.com", Password: "Secret123!"})
	require.NoError(t, err)
	assert.Equal(t, ChannelEmail, channel)
	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, "login", f.dispatcher.sent[0].Purpose)

	result, err := f.svc.VerifyLoginOTP(ctx, VerifyLoginRequest{EmailOrPhone: "owner@example.com", OTPCode: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", result.Email)
	assert.Equal(t, "super_admin", result.UserType)

	claims, err := f.tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, claims.UserID)

	_, err = f.svc.VerifyLoginOTP(ctx, VerifyLoginRequest{EmailOrPhone: "owner@example.com", OTPCode: "1234"})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestLoginByPhoneUsesSMS(t *testing.T) {
	f := newFixture(t, nil)
	f.seedUser(t, "owner@example.com", "+14155550100", "Secret123!", shared.StatusActive)

	channel, err := f.svc.Login(context.Background(), LoginRequest{EmailOrPhone: "+14155550100", Password: "Secret123!"})
	require.NoError(t, err)
	assert.Equal(t, ChannelSMS, channel)
	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, "+14155550100", f.dispatcher.sent[0].Recipient)
}

func TestLoginRejections(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.seedUser(t, "owner@example.com", "", "Secret123!", shared.StatusActive)
	f.seedUser(t, "gone@example.com", "", "Secret123!", shared.StatusInactive)

	_, err := f.svc.Login(ctx, LoginRequest{EmailOrPhone: "owner@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, LoginRequest{EmailOrPhone: "nobody@example.com", Password: "Secret123!"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.svc.Login(ctx, LoginRequest{EmailOrPhone: "not a login", Password: "Secret123!"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.svc.Login(ctx, LoginRequest{EmailOrPhone: "gone@example.com", Password: "Secret123!"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Empty(t, f.dispatcher.sent)
}

func TestVerifyLoginLocksAfterMaxAttempts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.seedUser(t, "owner@example.com", "", "Secret123!", shared.StatusActive)
	_, err := f.svc.Login(ctx, LoginRequest{EmailOrPhone: "owner@example.com", Password: "Secret123!"})
	require.NoError(t, err)

	bad := VerifyLoginRequest{EmailOrPhone: "owner@example.com", OTPCode: "0000"}
	for i := 0; i < defaultMaxAttempts-1; i++ {
		_, err = f.svc.VerifyLoginOTP(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}
	_, err = f.svc.VerifyLoginOTP(ctx, bad)
	assert.ErrorIs(t, err, ErrOTPLocked)

	_, err = f.svc.VerifyLoginOTP(ctx, VerifyLoginRequest{EmailOrPhone: "owner@example.com", OTPCode: "1234"})
	assert.ErrorIs(t, err, ErrOTPLocked)
}

func TestVerifyLoginExpired(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.seedUser(t, "owner@example.com", "", "Secret123!", shared.StatusActive)
	_, err := f.svc.Login(ctx, LoginRequest{EmailOrPhone: "owner@example.com", Password: "Secret123!"})
	require.NoError(t, err)

	f.clock.t = f.clock.t.Add(5 * time.Minute)
	_, err = f.svc.VerifyLoginOTP(ctx, VerifyLoginRequest{EmailOrPhone: "owner@example.com", OTPCode: "1234"})
	assert.ErrorIs(t, err, ErrOTPExpired)

	_, err = f.svc.VerifyLoginOTP(ctx, VerifyLoginRequest{EmailOrPhone: "owner@example.com", OTPCode: "1234"})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}
