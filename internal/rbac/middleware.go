package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vinaykumar231/WOFR-Backend/internal/access"
	"github.com/vinaykumar231/WOFR-Backend/internal/platform/httpx"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// CapabilityChecker answers resolver-backed capability checks.
type CapabilityChecker interface {
	Can(ctx context.Context, subject access.Subject, module, action string) (bool, error)
}

// DecisionRecorder counts gate outcomes.
type DecisionRecorder interface {
	AuthzDecision(outcome string)
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Resolver  CapabilityChecker
	Logger    *slog.Logger
	Decisions DecisionRecorder
}

// Require admits requests satisfying policy.
func (m Middleware) Require(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				m.record("unauthenticated")
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}
			allowed, err := m.allows(r.Context(), actor, policy)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac require", slog.String("user_id", actor.UserID), slog.Any("error", err))
				}
				m.record("error")
				httpx.RespondError(w, err)
				return
			}
			if !allowed {
				m.record("denied")
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			m.record("allowed")
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUserType admits callers whose user type is in types.
func (m Middleware) RequireUserType(types ...UserType) func(http.Handler) http.Handler {
	return m.Require(Policy{UserTypes: types})
}

// Authenticated admits any caller carrying a valid actor.
func (m Middleware) Authenticated() func(http.Handler) http.Handler {
	return m.Require(Policy{})
}

func (m Middleware) allows(ctx context.Context, actor shared.Actor, policy Policy) (bool, error) {
	if policy.open() || Allowed(actor.UserType, policy.UserTypes...) {
		return true, nil
	}
	if policy.Capability == nil || m.Resolver == nil {
		return false, nil
	}
	subject := access.Subject{UserID: actor.UserID, TenantID: actor.TenantID}
	return m.Resolver.Can(ctx, subject, policy.Capability.Module, policy.Capability.Action)
}

func (m Middleware) record(outcome string) {
	if m.Decisions != nil {
		m.Decisions.AuthzDecision(outcome)
	}
}
