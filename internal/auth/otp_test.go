package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*OTPStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewOTPStore(client, ""), mr
}

func TestOTPStoreRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return now })

	rec, err := store.Store(ctx, PurposeRegister, " A@Example.com ", "4821", 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, now.Add(5*time.Minute), rec.ExpiresAt)
	assert.True(t, mr.Exists("otp:register:a@example.com"))
	assert.Equal(t, 5*time.Minute+otpRetention, mr.TTL("otp:register:a@example.com"))

	got, err := store.Fetch(ctx, PurposeRegister, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "4821", got.Code)
	assert.Zero(t, got.Attempts)
	assert.False(t, got.Locked)
	assert.False(t, got.Expired(now.Add(4*time.Minute)))
	assert.True(t, got.Expired(now.Add(5*time.Minute)))
}

func TestOTPStoreAttemptsAndLock(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Store(ctx, PurposeLogin, "USR0000001", "1111", time.Minute)
	require.NoError(t, err)

	n, err := store.IncrementAttempts(ctx, PurposeLogin, "USR0000001")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, store.Lock(ctx, PurposeLogin, "USR0000001"))

	got, err := store.Fetch(ctx, PurposeLogin, "USR0000001")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempts)
	assert.True(t, got.Locked)

	_, err = store.Store(ctx, PurposeLogin, "USR0000001", "2222", time.Minute)
	require.NoError(t, err)
	got, err = store.Fetch(ctx, PurposeLogin, "USR0000001")
	require.NoError(t, err)
	assert.Zero(t, got.Attempts)
	assert.False(t, got.Locked)
}

func TestOTPStoreFetchMissing(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Fetch(ctx, PurposeLogin, "nobody")
	assert.ErrorIs(t, err, ErrOTPNotFound)

	_, err = store.Store(ctx, PurposeLogin, "USR0000001", "1111", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, PurposeLogin, "USR0000001"))
	_, err = store.Fetch(ctx, PurposeLogin, "USR0000001")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestOTPStoreVerifiedFlag(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	ok, err := store.IsVerified(ctx, "a@b.co")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.MarkVerified(ctx, "A@b.co", time.Minute))
	ok, err = store.IsVerified(ctx, "a@b.co")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = store.IsVerified(ctx, "a@b.co")
	require.NoError(t, err)
	assert.False(t, ok)
}
