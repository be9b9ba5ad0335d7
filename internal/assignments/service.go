package assignments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Directory answers existence checks against the user and tenant directories.
type Directory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	TenantExists(ctx context.Context, tenantID string) (bool, error)
	TenantUserExists(ctx context.Context, tenantUserID string) (bool, error)
}

// Invalidator drops cached capability sets after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Service implements the assignment engine.
type Service struct {
	repo      Repository
	directory Directory
	cache     Invalidator
	logger    *slog.Logger
}

// NewService builds Service instance.
func NewService(repo Repository, directory Directory, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, directory: directory, cache: cache, logger: logger}
}

func (s *Service) requireUser(ctx context.Context, userID string, tenantID *string) error {
	ok, err := s.directory.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user id %s not found", shared.ErrNotFound, userID)
	}
	if tenantID == nil {
		return nil
	}
	ok, err = s.directory.TenantExists(ctx, *tenantID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: tenant id %s not found", shared.ErrNotFound, *tenantID)
	}
	return nil
}

// AssignUserToModule assigns every mapping of a module to a user. Mappings the user
// already holds under the same tenant are skipped, so repeating the call creates nothing.
func (s *Service) AssignUserToModule(ctx context.Context, req ModuleRequest, assignedBy string) (UserResult, error) {
	tenantID := normalizeTenant(req.TenantID)
	if err := s.requireUser(ctx, req.UserID, tenantID); err != nil {
		return UserResult{}, err
	}
	result := UserResult{CreatedIDs: []int64{}, UserID: req.UserID, TenantID: tenantID, ModuleID: req.ModuleID}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		mappingIDs, err := repo.MappingIDsByModule(ctx, req.ModuleID)
		if err != nil {
			return err
		}
		if len(mappingIDs) == 0 {
			return fmt.Errorf("%w: no mappings for module %d", shared.ErrNotFound, req.ModuleID)
		}
		for _, mappingID := range mappingIDs {
			held, err := repo.UserAssignmentExists(ctx, req.UserID, tenantID, mappingID)
			if err != nil {
				return err
			}
			if held {
				continue
			}
			id, err := repo.InsertUserAssignment(ctx, UserAssignment{
				UserID: req.UserID, TenantID: tenantID, MappingID: mappingID, AssignedBy: assignedBy,
			})
			if err != nil {
				return err
			}
			result.CreatedIDs = append(result.CreatedIDs, id)
		}
		return nil
	})
	if err != nil {
		return UserResult{}, err
	}
	if len(result.CreatedIDs) > 0 {
		s.invalidate(ctx)
	}
	return result, nil
}

// AssignUserToMappings assigns explicit mappings to a user. Every listed mapping must
// exist; rows are created even when the user already holds the mapping.
func (s *Service) AssignUserToMappings(ctx context.Context, req MappingsRequest, assignedBy string) (UserResult, error) {
	if len(req.MappingIDs) == 0 {
		return UserResult{}, fmt.Errorf("%w: mapping_ids must not be empty", shared.ErrInvalidInput)
	}
	tenantID := normalizeTenant(req.TenantID)
	if err := s.requireUser(ctx, req.UserID, tenantID); err != nil {
		return UserResult{}, err
	}
	result := UserResult{CreatedIDs: []int64{}, UserID: req.UserID, TenantID: tenantID, MappingIDs: req.MappingIDs}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		for _, mappingID := range req.MappingIDs {
			ok, err := repo.MappingExists(ctx, mappingID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: mapping id %d not found", shared.ErrNotFound, mappingID)
			}
			id, err := repo.InsertUserAssignment(ctx, UserAssignment{
				UserID: req.UserID, TenantID: tenantID, MappingID: mappingID, AssignedBy: assignedBy,
			})
			if err != nil {
				return err
			}
			result.CreatedIDs = append(result.CreatedIDs, id)
		}
		return nil
	})
	if err != nil {
		return UserResult{}, err
	}
	s.invalidate(ctx)
	return result, nil
}

// AssignTenantUser assigns one mapping to a tenant user. A tenant user holds each
// mapping at most once.
func (s *Service) AssignTenantUser(ctx context.Context, req TenantUserRequest) (TenantUserAssignment, error) {
	ok, err := s.directory.TenantUserExists(ctx, req.TenantUserID)
	if err != nil {
		return TenantUserAssignment{}, err
	}
	if !ok {
		return TenantUserAssignment{}, fmt.Errorf("%w: tenant user id %s not found", shared.ErrNotFound, req.TenantUserID)
	}
	ok, err = s.directory.TenantExists(ctx, req.TenantID)
	if err != nil {
		return TenantUserAssignment{}, err
	}
	if !ok {
		return TenantUserAssignment{}, fmt.Errorf("%w: tenant id %s not found", shared.ErrNotFound, req.TenantID)
	}

	var created TenantUserAssignment
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		ok, err := repo.MappingExists(ctx, req.MappingID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: mapping id %d not found", shared.ErrNotFound, req.MappingID)
		}
		held, err := repo.TenantUserAssignmentExists(ctx, req.TenantUserID, req.MappingID)
		if err != nil {
			return err
		}
		if held {
			return fmt.Errorf("%w: tenant user %s already holds mapping %d", shared.ErrConflict, req.TenantUserID, req.MappingID)
		}
		created, err = repo.InsertTenantUserAssignment(ctx, TenantUserAssignment{
			TenantUserID: req.TenantUserID, TenantID: req.TenantID, MappingID: req.MappingID,
		})
		return err
	})
	if err != nil {
		return TenantUserAssignment{}, err
	}
	s.invalidate(ctx)
	s.logger.Info("tenant user assigned",
		slog.String("tenant_user_id", req.TenantUserID),
		slog.Int64("mapping_id", req.MappingID))
	return created, nil
}

// ListUserAssignments returns one page of user assignments. Chains with any inactive
// link are hidden unless IncludeInactive is set.
func (s *Service) ListUserAssignments(ctx context.Context, req UserListRequest) ([]UserAssignmentView, shared.PageMeta, error) {
	sort, err := shared.ParseSort(req.SortBy, req.Order, "assignment_date", userSortFields)
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	page := req.Page.Normalize()
	views, total, err := s.repo.ListUserAssignments(ctx, UserListFilter{
		UserID:          req.UserID,
		TenantID:        req.TenantID,
		Names:           req.Names,
		IncludeInactive: req.IncludeInactive,
		Sort:            sort,
		Page:            page,
	})
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	return views, shared.NewPageMeta(page, total), nil
}

// ListTenantUserAssignments returns one page of tenant user assignments.
func (s *Service) ListTenantUserAssignments(ctx context.Context, req TenantUserListRequest) ([]TenantUserAssignmentView, shared.PageMeta, error) {
	sort, err := shared.ParseSort(req.SortBy, req.Order, "assignment_date", tenantUserSortFields)
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	page := req.Page.Normalize()
	views, total, err := s.repo.ListTenantUserAssignments(ctx, TenantUserListFilter{
		TenantUserID:    req.TenantUserID,
		TenantID:        req.TenantID,
		MappingID:       req.MappingID,
		Names:           req.Names,
		IncludeInactive: req.IncludeInactive,
		Sort:            sort,
		Page:            page,
	})
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	return views, shared.NewPageMeta(page, total), nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func normalizeTenant(tenantID *string) *string {
	if tenantID == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*tenantID)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
