package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
	_ "github.com/vinaykumar231/WOFR-Backend/testing"
)

type mockRepository struct {
	users map[string]User
}

func (m *mockRepository) Get(ctx context.Context, userID string) (User, error) {
	u, ok := m.users[userID]
	if !ok {
		return User{}, fmt.Errorf("%w: user id %s not found", shared.ErrNotFound, userID)
	}
	return u, nil
}

func (m *mockRepository) List(ctx context.Context, filter ListFilter) ([]User, int, error) {
	var out []User
	for _, u := range m.users {
		if filter.UserType == nil || u.UserType == *filter.UserType {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}

func (m *mockRepository) Exists(ctx context.Context, userID string) (bool, error) {
	_, ok := m.users[userID]
	return ok, nil
}

func (m *mockRepository) FindByLogin(ctx context.Context, login string) (User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, login) || u.PhoneNumber == login {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("%w: no user registered with %s", shared.ErrNotFound, login)
}

func (m *mockRepository) Create(ctx context.Context, u User) (User, error) {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return User{}, fmt.Errorf("%w: email %s is already registered", shared.ErrConflict, u.Email)
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.UserID] = u
	return u, nil
}

func TestCreateGeneratesIDAndNormalizesEmail(t *testing.T) {
	repo := &mockRepository{users: make(map[string]User)}
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), User{Username: "ana", Email: " Ana@Example.com ", UserType: "super_admin"})
	require.NoError(t, err)
	assert.Len(t, created.UserID, 10)
	assert.True(t, strings.HasPrefix(created.UserID, "USR"))
	assert.Equal(t, "ana@example.com", created.Email)
	assert.Equal(t, shared.StatusActive, created.Status)

	ok, err := svc.Exists(context.Background(), created.UserID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Create(context.Background(), User{Username: "ana2", Email: "ana@example.com"})
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

func TestFindByLogin(t *testing.T) {
	repo := &mockRepository{users: map[string]User{
		"USR0000001": {UserID: "USR0000001", Email: "ops@example.com", PhoneNumber: "+15550100"},
	}}
	svc := NewService(repo)

	byPhone, err := svc.FindByLogin(context.Background(), " +15550100 ")
	require.NoError(t, err)
	assert.Equal(t, "USR0000001", byPhone.UserID)

	_, err = svc.FindByLogin(context.Background(), "")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = svc.FindByLogin(context.Background(), "ghost@example.com")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestListRejectsUnknownSort(t *testing.T) {
	svc := NewService(&mockRepository{users: make(map[string]User)})
	_, _, err := svc.List(context.Background(), ListRequest{SortBy: "password_hash"})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}
