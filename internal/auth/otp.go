package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultOTPPrefix = "otp"

	fieldCode      = "code"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
	fieldAttempts  = "attempts"
	fieldLocked    = "locked"

	// Records outlive their expiry so an expired code can be told apart from a missing one.
	otpRetention = time.Hour
)

// Purpose scopes an OTP to one flow.
type Purpose string

const (
	PurposeRegister Purpose = "register"
	PurposeLogin    Purpose = "login"
)

// OTPRecord is one issued code.
type OTPRecord struct {
	Purpose    Purpose
	Identifier string
	Code       string
	Attempts   int
	Locked     bool
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the code is past its expiry at now.
func (r OTPRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// OTPStore keeps OTP codes and verified-email flags in Redis.
type OTPStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewOTPStore constructs the store with the given key prefix.
func NewOTPStore(client *redis.Client, keyPrefix string) *OTPStore {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultOTPPrefix
	}
	return &OTPStore{client: client, prefix: prefix, now: time.Now}
}

// WithClock overrides the internal clock, used in tests.
func (s *OTPStore) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Store replaces any pending code for purpose and identifier, resetting attempts.
func (s *OTPStore) Store(ctx context.Context, purpose Purpose, identifier, code string, ttl time.Duration) (OTPRecord, error) {
	key := s.key(string(purpose), identifier)
	switch {
	case key == "":
		return OTPRecord{}, errors.New("auth: otp purpose and identifier are required")
	case strings.TrimSpace(code) == "":
		return OTPRecord{}, errors.New("auth: otp code is required")
	case ttl <= 0:
		return OTPRecord{}, errors.New("auth: otp ttl must be positive")
	}

	now := s.now().UTC()
	expiresAt := now.Add(ttl)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		fieldCode:      code,
		fieldCreatedAt: strconv.FormatInt(now.Unix(), 10),
		fieldExpiresAt: strconv.FormatInt(expiresAt.Unix(), 10),
		fieldAttempts:  "0",
		fieldLocked:    "0",
	})
	pipe.Expire(ctx, key, ttl+otpRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		return OTPRecord{}, fmt.Errorf("auth: store otp: %w", err)
	}

	return OTPRecord{
		Purpose:    purpose,
		Identifier: strings.TrimSpace(identifier),
		Code:       code,
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
	}, nil
}

// Fetch loads the pending code. A missing record is ErrOTPNotFound.
func (s *OTPStore) Fetch(ctx context.Context, purpose Purpose, identifier string) (OTPRecord, error) {
	key := s.key(string(purpose), identifier)
	if key == "" {
		return OTPRecord{}, ErrOTPNotFound
	}
	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return OTPRecord{}, fmt.Errorf("auth: fetch otp: %w", err)
	}
	code := strings.TrimSpace(values[fieldCode])
	if len(values) == 0 || code == "" {
		return OTPRecord{}, ErrOTPNotFound
	}

	createdAt, err := parseUnix(values[fieldCreatedAt])
	if err != nil {
		return OTPRecord{}, fmt.Errorf("auth: parse otp created_at: %w", err)
	}
	expiresAt, err := parseUnix(values[fieldExpiresAt])
	if err != nil {
		return OTPRecord{}, fmt.Errorf("auth: parse otp expires_at: %w", err)
	}
	attempts, _ := strconv.Atoi(values[fieldAttempts])

	return OTPRecord{
		Purpose:    purpose,
		Identifier: strings.TrimSpace(identifier),
		Code:       code,
		Attempts:   attempts,
		Locked:     values[fieldLocked] == "1",
		CreatedAt:  createdAt,
		ExpiresAt:  expiresAt,
	}, nil
}

// IncrementAttempts records a failed guess and returns the new count.
func (s *OTPStore) IncrementAttempts(ctx context.Context, purpose Purpose, identifier string) (int, error) {
	key := s.key(string(purpose), identifier)
	count, err := s.client.HIncrBy(ctx, key, fieldAttempts, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("auth: increment otp attempts: %w", err)
	}
	return int(count), nil
}

// Lock freezes the code; further verification fails until a new one is issued.
func (s *OTPStore) Lock(ctx context.Context, purpose Purpose, identifier string) error {
	if err := s.client.HSet(ctx, s.key(string(purpose), identifier), fieldLocked, "1").Err(); err != nil {
		return fmt.Errorf("auth: lock otp: %w", err)
	}
	return nil
}

// Delete removes the code, enforcing single use.
func (s *OTPStore) Delete(ctx context.Context, purpose Purpose, identifier string) error {
	key := s.key(string(purpose), identifier)
	if key == "" {
		return ErrOTPNotFound
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("auth: delete otp: %w", err)
	}
	return nil
}

// MarkVerified flags an email as verified for ttl.
func (s *OTPStore) MarkVerified(ctx context.Context, email string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.verifiedKey(email), "1", ttl).Err(); err != nil {
		return fmt.Errorf("auth: mark email verified: %w", err)
	}
	return nil
}

// IsVerified reports whether the email carries a live verified flag.
func (s *OTPStore) IsVerified(ctx context.Context, email string) (bool, error) {
	n, err := s.client.Exists(ctx, s.verifiedKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("auth: check email verified: %w", err)
	}
	return n > 0, nil
}

// ClearVerified drops the verified flag once it has been consumed.
func (s *OTPStore) ClearVerified(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, s.verifiedKey(email)).Err(); err != nil {
		return fmt.Errorf("auth: clear email verified: %w", err)
	}
	return nil
}

func (s *OTPStore) key(purpose, identifier string) string {
	purpose = strings.TrimSpace(purpose)
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if purpose == "" || identifier == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", s.prefix, purpose, identifier)
}

func (s *OTPStore) verifiedKey(email string) string {
	return fmt.Sprintf("%s:verified:%s", s.prefix, strings.ToLower(strings.TrimSpace(email)))
}

func parseUnix(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, errors.New("timestamp is empty")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(v, 0).UTC(), nil
}
