package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Invalidator drops cached capability sets after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Service handles catalog business logic for one kind.
type Service struct {
	kind  Kind
	repo  Repository
	cache Invalidator
}

// NewService builds Service instance.
func NewService(kind Kind, repo Repository, cache Invalidator) *Service {
	return &Service{kind: kind, repo: repo, cache: cache}
}

// Kind reports the managed kind.
func (s *Service) Kind() Kind {
	return s.kind
}

// List returns one page of entities.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Entity, shared.PageMeta, error) {
	sort, err := shared.ParseSort(req.SortBy, req.Order, "id", sortFields)
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	page := req.Page.Normalize()
	entities, total, err := s.repo.List(ctx, ListFilter{Status: req.Status, Name: req.Name, Sort: sort, Page: page})
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	return entities, shared.NewPageMeta(page, total), nil
}

// Get returns one entity.
func (s *Service) Get(ctx context.Context, id int64) (Entity, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new entity. Names are unique regardless of case.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Entity, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Entity{}, fmt.Errorf("%w: %s name is required", shared.ErrInvalidInput, s.kind)
	}
	status := shared.StatusActive
	if req.Status != "" {
		parsed, err := shared.ParseStatus(req.Status)
		if err != nil {
			return Entity{}, err
		}
		status = parsed
	}
	entity, err := s.repo.Create(ctx, name, strings.TrimSpace(req.Description), status)
	if err != nil {
		return Entity{}, err
	}
	s.invalidate(ctx)
	return entity, nil
}

// Update patches name and description.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Entity, error) {
	fields := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return Entity{}, fmt.Errorf("%w: %s name cannot be empty", shared.ErrInvalidInput, s.kind)
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if len(fields) == 0 {
		return Entity{}, fmt.Errorf("%w: nothing to update", shared.ErrInvalidInput)
	}
	entity, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return Entity{}, err
	}
	s.invalidate(ctx)
	return entity, nil
}

// SetStatus activates or deactivates an entity. Deactivation revokes every capability
// resolved through it.
func (s *Service) SetStatus(ctx context.Context, id int64, raw string) (Entity, error) {
	status, err := shared.ParseStatus(raw)
	if err != nil {
		return Entity{}, err
	}
	entity, err := s.repo.Update(ctx, id, map[string]any{"status": status})
	if err != nil {
		return Entity{}, err
	}
	s.invalidate(ctx)
	return entity, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
