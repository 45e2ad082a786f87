/*

AdminRegistry is the membership test behind every mutating operation: only
principals seeded at deployment may change price, benchmark, or reward state.

*/

package auth

import (
	"github.com/wind-network/wind/internal/logger"
	"github.com/wind-network/wind/internal/types"
)

// AdminRegistry answers whether a caller principal is authorized to mutate
// state. Lookups never fail; unknown and anonymous principals are simply not
// admins.
type AdminRegistry struct {
	members map[types.Principal]struct{}
}

// NewAdminRegistry builds a registry from the configured principal list.
func NewAdminRegistry(principals []string) *AdminRegistry {
	members := make(map[types.Principal]struct{}, len(principals))
	for _, principal := range principals {
		members[types.Principal(principal)] = struct{}{}
	}

	regLogger := logger.GetForComponent("admin_registry")
	regLogger.Info().Int("adminCount", len(members)).Msg("Admin registry initialized")

	return &AdminRegistry{members: members}
}

// IsAdmin reports whether the caller may invoke mutating operations. Anonymous
// callers are never admins.
func (r *AdminRegistry) IsAdmin(caller types.Principal) bool {
	if caller.Anonymous() {
		return false
	}
	_, ok := r.members[caller]
	return ok
}
