package access

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Resolver derives effective capability sets from assignment rows.
type Resolver struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
}

// NewResolver wires the resolver. A nil cache resolves straight from the repository.
func NewResolver(repo Repository, cache *Cache) *Resolver {
	return &Resolver{repo: repo, cache: cache}
}

// Resolve returns the deduplicated, status-filtered capability set of subject.
func (r *Resolver) Resolve(ctx context.Context, subject Subject) (CapabilitySet, error) {
	subject = normalizeSubject(subject)
	if subject.UserID == "" && subject.TenantUserID == "" {
		return CapabilitySet{}, fmt.Errorf("%w: user_id or tenant_user_id is required", shared.ErrInvalidInput)
	}
	parts := subject.cacheParts()
	// Loads are shared per cache version so a resolve issued after Invalidate
	// never joins a load that began before it.
	key := r.cache.versionedKey(ctx, parts...)
	flight := key
	if flight == "" {
		flight = strings.Join(parts, ":")
	}
	val, err, _ := r.singleflight(ctx, flight, func(ctx context.Context) (any, error) {
		var set CapabilitySet
		err := r.cache.fetchAt(ctx, key, &set, func(ctx context.Context) (any, error) {
			return r.load(ctx, subject)
		})
		return set, err
	})
	if err != nil {
		return CapabilitySet{}, fmt.Errorf("resolve capabilities: %w", err)
	}
	return val.(CapabilitySet), nil
}

// Can reports whether subject may perform action on module.
func (r *Resolver) Can(ctx context.Context, subject Subject, module, action string) (bool, error) {
	set, err := r.Resolve(ctx, subject)
	if err != nil {
		return false, err
	}
	return set.Allows(module, action), nil
}

// Warm resolves every subject holding assignments so their sets are cached. It returns
// the number of subjects resolved.
func (r *Resolver) Warm(ctx context.Context) (int, error) {
	subjects, err := r.repo.Subjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("list subjects: %w", err)
	}
	for i, s := range subjects {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := r.Resolve(ctx, s); err != nil {
			return i, err
		}
	}
	return len(subjects), nil
}

func (r *Resolver) load(ctx context.Context, subject Subject) (CapabilitySet, error) {
	var (
		grants []Grant
		err    error
	)
	if subject.TenantUserID != "" {
		grants, err = r.repo.TenantUserGrants(ctx, subject.TenantUserID, subject.TenantID)
	} else {
		grants, err = r.repo.UserGrants(ctx, subject.UserID, subject.TenantID)
	}
	if err != nil {
		return CapabilitySet{}, err
	}
	return CapabilitySet{Subject: subject, Capabilities: Effective(grants)}, nil
}

func (r *Resolver) singleflight(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	resultChan := r.group.DoChan(key, func() (any, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}

func normalizeSubject(s Subject) Subject {
	s.UserID = strings.TrimSpace(s.UserID)
	s.TenantUserID = strings.TrimSpace(s.TenantUserID)
	s.TenantID = strings.TrimSpace(s.TenantID)
	return s
}
