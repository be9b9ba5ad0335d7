package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Service handles user business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	return s.repo.Get(ctx, userID)
}

// Exists reports whether userID is registered.
func (s *Service) Exists(ctx context.Context, userID string) (bool, error) {
	return s.repo.Exists(ctx, userID)
}

// FindByLogin resolves an email or phone number to a user.
func (s *Service) FindByLogin(ctx context.Context, login string) (User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return User{}, fmt.Errorf("%w: email or phone number is required", shared.ErrInvalidInput)
	}
	return s.repo.FindByLogin(ctx, login)
}

// Create registers a user, generating its id.
func (s *Service) Create(ctx context.Context, u User) (User, error) {
	u.UserID = shared.NewID("USR")
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Status == "" {
		u.Status = shared.StatusActive
	}
	return s.repo.Create(ctx, u)
}

// List returns one page of users.
func (s *Service) List(ctx context.Context, req ListRequest) ([]User, shared.PageMeta, error) {
	sort, err := shared.ParseSort(req.SortBy, req.Order, "created_at", sortFields)
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	page := req.Page.Normalize()
	out, total, err := s.repo.List(ctx, ListFilter{UserType: req.UserType, Status: req.Status, Sort: sort, Page: page})
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	return out, shared.NewPageMeta(page, total), nil
}
