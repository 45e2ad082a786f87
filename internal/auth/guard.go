package auth

import (
	"github.com/wind-network/wind/internal/types"
)

// Guard is the precondition wrapper invoked by every mutating entrypoint. It
// runs before any store is touched, so a rejected caller can never observe a
// partial effect.
type Guard struct {
	registry *AdminRegistry
}

// NewGuard wraps an AdminRegistry.
func NewGuard(registry *AdminRegistry) *Guard {
	return &Guard{registry: registry}
}

// Authorize rejects anonymous callers with NotAuthenticated and non-admin
// callers with PermissionDenied. A nil return means the caller may mutate.
func (g *Guard) Authorize(caller types.Principal) error {
	if caller.Anonymous() {
		return types.NewError(types.KindNotAuthenticated, "caller identity required for mutating operations")
	}
	if !g.registry.IsAdmin(caller) {
		return types.NewError(types.KindPermissionDenied, "caller %q is not an admin", caller)
	}
	return nil
}
