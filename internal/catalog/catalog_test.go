package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/repoguild/internal/forge"
)

func TestStandardToken(t *testing.T) {
	tests := []struct {
		role     string
		expected string
		ok       bool
	}{
		{role: "Admin", expected: TokenAdmin, ok: true},
		{role: "Maintain", expected: TokenMaintain, ok: true},
		{role: "Write", expected: TokenPush, ok: true},
		{role: "Triage", expected: TokenTriage, ok: true},
		{role: "Read", expected: TokenPull, ok: true},
		{role: "READ", expected: TokenPull, ok: true},
		{role: " push ", expected: TokenPush, ok: true},
		{role: "pull", expected: TokenPull, ok: true},
		{role: "Owner", ok: false},
		{role: "", ok: false},
	}
	for _, tt := range tests {
		token, ok := StandardToken(tt.role)
		assert.Equal(t, tt.ok, ok, "role %q", tt.role)
		if tt.ok {
			assert.Equal(t, tt.expected, token, "role %q", tt.role)
		}
	}
}

func TestCatalogCustomRoleLookup(t *testing.T) {
	cat := New([]string{"Security Reviewer", "  Release Manager "})

	canonical, ok := cat.CustomRole("security reviewer")
	require.True(t, ok)
	assert.Equal(t, "Security Reviewer", canonical)

	canonical, ok = cat.CustomRole("RELEASE MANAGER")
	require.True(t, ok)
	assert.Equal(t, "Release Manager", canonical)

	_, ok = cat.CustomRole("Write")
	assert.False(t, ok)
}

func TestCatalogIgnoresBlankNames(t *testing.T) {
	cat := New([]string{"", "  ", "Auditor"})
	assert.Len(t, cat.CustomRoleNames(), 1)
}

type fakeRolesClient struct {
	forge.Client
	roles []forge.CustomRole
	err   error
}

func (f *fakeRolesClient) ListCustomRoles(ctx context.Context, org string) ([]forge.CustomRole, error) {
	return f.roles, f.err
}

func TestLoadDegradesToStandardOnly(t *testing.T) {
	ctx := context.Background()

	cat := Load(ctx, &fakeRolesClient{err: errors.New("boom")}, "acme")
	require.NotNil(t, cat)
	assert.Empty(t, cat.CustomRoleNames())

	_, ok := cat.CustomRole("Security Reviewer")
	assert.False(t, ok)
}

func TestLoadBuildsCatalogFromRemoteRoles(t *testing.T) {
	ctx := context.Background()
	client := &fakeRolesClient{roles: []forge.CustomRole{
		{ID: 1, Name: "Security Reviewer"},
		{ID: 2, Name: "Auditor"},
	}}

	cat := Load(ctx, client, "acme")
	_, ok := cat.CustomRole("auditor")
	assert.True(t, ok)
	assert.Len(t, cat.CustomRoleNames(), 2)
}
