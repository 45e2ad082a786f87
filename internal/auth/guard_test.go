package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wind-network/wind/internal/types"
)

func TestAdminRegistry_IsAdmin(t *testing.T) {
	registry := NewAdminRegistry([]string{"admin-1", "admin-2"})

	assert.True(t, registry.IsAdmin("admin-1"))
	assert.True(t, registry.IsAdmin("admin-2"))
	assert.False(t, registry.IsAdmin("someone-else"))
	assert.False(t, registry.IsAdmin(""), "anonymous caller must never be admin")
}

func TestGuard_Authorize(t *testing.T) {
	guard := NewGuard(NewAdminRegistry([]string{"admin-1"}))

	tests := []struct {
		name     string
		caller   types.Principal
		wantKind types.ErrorKind
	}{
		{name: "admin passes", caller: "admin-1"},
		{name: "anonymous rejected", caller: "", wantKind: types.KindNotAuthenticated},
		{name: "non-admin rejected", caller: "user-42", wantKind: types.KindPermissionDenied},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := guard.Authorize(tc.caller)
			if tc.wantKind == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.wantKind, types.KindOf(err))
		})
	}
}
