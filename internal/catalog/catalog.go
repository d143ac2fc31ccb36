// Package catalog holds the role catalog for one provisioning run: the
// fixed standard permission ladder plus the organization's custom
// repository roles fetched from the forge.
package catalog

import "strings"

// Standard permission tokens, highest privilege first.
const (
	TokenAdmin    = "admin"
	TokenMaintain = "maintain"
	TokenPush     = "push"
	TokenTriage   = "triage"
	TokenPull     = "pull"
)

// Ladder is the standard priority order used to pick the strongest
// standard role in a unit.
var Ladder = []string{TokenAdmin, TokenMaintain, TokenPush, TokenTriage, TokenPull}

// standardRoles maps input role names (and the tokens themselves, so
// token-form input rows also work) to permission tokens. Lookup is
// case-insensitive.
var standardRoles = map[string]string{
	"admin":    TokenAdmin,
	"maintain": TokenMaintain,
	"write":    TokenPush,
	"push":     TokenPush,
	"triage":   TokenTriage,
	"read":     TokenPull,
	"pull":     TokenPull,
}

// StandardToken maps a role name to its standard permission token.
func StandardToken(role string) (string, bool) {
	token, ok := standardRoles[strings.ToLower(strings.TrimSpace(role))]
	return token, ok
}

// Catalog is immutable for the duration of a run.
type Catalog struct {
	// lower-cased custom role name -> canonical (remote-defined) name
	custom map[string]string
}

// New builds a catalog over the given custom role names. Passing no
// names yields a standard-only catalog.
func New(customNames []string) *Catalog {
	c := &Catalog{custom: make(map[string]string, len(customNames))}
	for _, name := range customNames {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := c.custom[key]; !ok {
			c.custom[key] = strings.TrimSpace(name)
		}
	}
	return c
}

// CustomRole reports whether name matches a custom role, returning the
// canonical spelling the forge defines for it.
func (c *Catalog) CustomRole(name string) (string, bool) {
	canonical, ok := c.custom[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}

// CustomRoleNames returns the canonical custom role names, for display.
func (c *Catalog) CustomRoleNames() []string {
	names := make([]string, 0, len(c.custom))
	for _, name := range c.custom {
		names = append(names, name)
	}
	return names
}
