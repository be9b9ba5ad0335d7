package mappings

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Invalidator drops cached capability sets after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Service implements the mapping engine.
type Service struct {
	repo   Repository
	cache  Invalidator
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service instance.
func NewService(repo Repository, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// CreateBulk creates the cross product of every group's roles and actions under one module.
// Existing triples are reported, not rewritten. Nothing is written unless every
// referenced module, action and role exists.
func (s *Service) CreateBulk(ctx context.Context, req BulkCreateRequest, assignedBy string) (BulkCreateResult, error) {
	if len(req.Assignments) == 0 {
		return BulkCreateResult{}, fmt.Errorf("%w: at least one assignment group is required", shared.ErrInvalidInput)
	}
	statuses := make([]shared.Status, len(req.Assignments))
	var roleIDs, actionIDs []int64
	for i, group := range req.Assignments {
		statuses[i] = shared.StatusActive
		if group.Status != "" {
			status, err := shared.ParseStatus(group.Status)
			if err != nil {
				return BulkCreateResult{}, err
			}
			statuses[i] = status
		}
		roleIDs = append(roleIDs, group.RoleIDs...)
		actionIDs = append(actionIDs, group.ActionIDs...)
	}

	result := BulkCreateResult{
		CreatedMappingIDs: []int64{},
		ModuleID:          req.ModuleID,
		ActionIDs:         distinctSorted(actionIDs),
		RoleIDs:           distinctSorted(roleIDs),
		AssignedBy:        assignedBy,
		AssignmentDate:    s.now().UTC(),
		ExistingMappings:  []ExistingMapping{},
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := requireExists(ctx, repo.ModuleExists, "module", []int64{req.ModuleID}); err != nil {
			return err
		}
		if err := requireExists(ctx, repo.ActionExists, "action", actionIDs); err != nil {
			return err
		}
		if err := requireExists(ctx, repo.RoleExists, "role", roleIDs); err != nil {
			return err
		}

		for i, group := range req.Assignments {
			for _, roleID := range group.RoleIDs {
				for _, actionID := range group.ActionIDs {
					existing, found, err := repo.FindByTriple(ctx, roleID, req.ModuleID, actionID)
					if err != nil {
						return err
					}
					if found {
						result.ExistingMappings = append(result.ExistingMappings, ExistingMapping{
							RoleID: roleID, ActionID: actionID, MappingID: existing.ID,
						})
						continue
					}
					created, err := repo.Insert(ctx, Mapping{
						RoleID:     roleID,
						ModuleID:   req.ModuleID,
						ActionID:   actionID,
						Status:     statuses[i],
						AssignedBy: assignedBy,
					})
					if err != nil {
						return err
					}
					result.CreatedMappingIDs = append(result.CreatedMappingIDs, created.ID)
				}
			}
		}
		return nil
	})
	if err != nil {
		return BulkCreateResult{}, err
	}
	if len(result.CreatedMappingIDs) > 0 {
		s.invalidate(ctx)
	}
	s.logger.Info("mappings created",
		slog.Int64("module_id", req.ModuleID),
		slog.Int("created", len(result.CreatedMappingIDs)),
		slog.Int("existing", len(result.ExistingMappings)))
	return result, nil
}

// Update applies each patch in order to one mapping. Only the first action id of a
// patch is used.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Mapping, error) {
	if len(req.Assignments) == 0 {
		return Mapping{}, fmt.Errorf("%w: at least one assignment patch is required", shared.ErrInvalidInput)
	}
	var updated Mapping
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := requireExists(ctx, repo.ModuleExists, "module", []int64{req.ModuleID}); err != nil {
			return err
		}
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		updated = current
		for _, patch := range req.Assignments {
			fields := make(map[string]any)
			if patch.RoleID != nil {
				if err := requireExists(ctx, repo.RoleExists, "role", []int64{*patch.RoleID}); err != nil {
					return err
				}
				fields["role_id"] = *patch.RoleID
			}
			if len(patch.ActionIDs) > 0 {
				if err := requireExists(ctx, repo.ActionExists, "action", patch.ActionIDs); err != nil {
					return err
				}
				fields["action_id"] = patch.ActionIDs[0]
			}
			if patch.AssignedBy != nil {
				fields["assigned_by"] = *patch.AssignedBy
			}
			if patch.Status != nil {
				status, err := shared.ParseStatus(*patch.Status)
				if err != nil {
					return err
				}
				fields["status"] = status
			}
			updated, err = repo.Update(ctx, id, fields)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Mapping{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// SetStatusBulk sets status on every listed mapping, or on none.
func (s *Service) SetStatusBulk(ctx context.Context, req StatusBulkRequest) (StatusBulkResult, error) {
	status, err := shared.ParseStatus(req.Status)
	if err != nil {
		return StatusBulkResult{}, err
	}
	if len(req.MappingIDs) == 0 {
		return StatusBulkResult{}, fmt.Errorf("%w: mapping_ids must not be empty", shared.ErrInvalidInput)
	}
	result := StatusBulkResult{UpdatedMappingIDs: make([]int64, 0, len(req.MappingIDs)), NewStatus: status}
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		for _, id := range req.MappingIDs {
			if _, err := repo.Get(ctx, id); err != nil {
				return err
			}
			if _, err := repo.Update(ctx, id, map[string]any{"status": status}); err != nil {
				return err
			}
			result.UpdatedMappingIDs = append(result.UpdatedMappingIDs, id)
		}
		return nil
	})
	if err != nil {
		return StatusBulkResult{}, err
	}
	s.invalidate(ctx)
	return result, nil
}

// List returns one page of joined mapping rows.
func (s *Service) List(ctx context.Context, req ListRequest) ([]MappingView, shared.PageMeta, error) {
	sort, err := shared.ParseSort(req.SortBy, req.Order, "assignment_date", sortFields)
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	page := req.Page.Normalize()
	views, total, err := s.repo.List(ctx, ListFilter{
		ModuleName: req.ModuleName,
		ActionName: req.ActionName,
		RoleName:   req.RoleName,
		Sort:       sort,
		Page:       page,
	})
	if err != nil {
		return nil, shared.PageMeta{}, err
	}
	return views, shared.NewPageMeta(page, total), nil
}

// Get returns one mapping.
func (s *Service) Get(ctx context.Context, id int64) (Mapping, error) {
	return s.repo.Get(ctx, id)
}

// ListByModule returns every mapping of a module in id order.
func (s *Service) ListByModule(ctx context.Context, moduleID int64) ([]Mapping, error) {
	return s.repo.ListByModule(ctx, moduleID)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func requireExists(ctx context.Context, exists func(context.Context, int64) (bool, error), label string, ids []int64) error {
	for _, id := range ids {
		ok, err := exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s id %d does not exist", shared.ErrNotFound, label, id)
		}
	}
	return nil
}

func distinctSorted(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
