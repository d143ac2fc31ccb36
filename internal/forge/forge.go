// Package forge talks to the hosted source-control platform's REST API.
// The Client interface is the narrow surface the rest of the tool
// consumes; HTTPClient implements it against a GitHub-compatible forge.
package forge

import "context"

// Team is an organization team as the forge reports it.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CustomRole is an organization-defined repository role.
type CustomRole struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	BaseRole string `json:"base_role"`
}

// Client is the forge surface consumed by the catalog loader and the
// reconciler. Grant calls are create-or-update: repeating them with the
// same arguments is a no-op on the remote side.
type Client interface {
	// Organization validates that the organization exists and the
	// configured credentials can see it.
	Organization(ctx context.Context, org string) error

	// ListCustomRoles fetches the organization's custom repository
	// roles. Forges without the feature yield an empty list, not an
	// error.
	ListCustomRoles(ctx context.Context, org string) ([]CustomRole, error)

	// RepositoryExists reports whether org/repo exists.
	RepositoryExists(ctx context.Context, org, repo string) (bool, error)

	// Team looks up a team by slug. Returns a cerr.NotFound error when
	// the team does not exist.
	Team(ctx context.Context, org, slug string) (*Team, error)

	// GrantTeamRepository grants the team access to org/repo with the
	// given permission token or custom role name.
	GrantTeamRepository(ctx context.Context, org, teamSlug, repo, permission string) error

	// GrantUserRepository adds the user as a direct collaborator on
	// org/repo with the given permission token or custom role name.
	GrantUserRepository(ctx context.Context, org, repo, user, permission string) error
}
