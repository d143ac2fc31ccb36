package grant

import (
	"context"
	"log/slog"

	"github.com/kazz187/repoguild/internal/catalog"
)

// Source records which branch of the catalog produced the permission.
type Source int

const (
	SourceStandard Source = iota
	SourceCustom
)

func (s Source) String() string {
	if s == SourceCustom {
		return "custom"
	}
	return "standard"
}

// Permission is the resolved grant value: a standard token, or a custom
// role name carried as-is.
type Permission struct {
	Value  string
	Source Source
}

func (p Permission) String() string {
	return p.Value
}

// Resolved pairs a unit with the single permission to apply to it.
type Resolved struct {
	Unit       *Unit
	Permission Permission
}

// Resolve collapses a unit's role list into one permission. Custom roles
// unconditionally outrank every standard role; among customs the first
// in input order wins, among standards the highest on the ladder wins.
// An empty role list and any unrecognized role string default to pull.
func Resolve(ctx context.Context, unit *Unit, cat *catalog.Catalog) Resolved {
	var customs []string
	var standards []string

	for _, role := range unit.Roles {
		if canonical, ok := cat.CustomRole(role); ok {
			customs = append(customs, canonical)
			continue
		}
		token, ok := catalog.StandardToken(role)
		if !ok {
			slog.WarnContext(ctx, "unknown role, defaulting to pull",
				slog.String("role", role),
				slog.String("repo", unit.Repository),
				slog.String("target", unit.Target()))
			token = catalog.TokenPull
		}
		standards = append(standards, token)
	}

	if len(customs) > 0 {
		if conflicting := distinctAfterFirst(customs); len(conflicting) > 0 {
			slog.WarnContext(ctx, "conflicting custom roles in one unit, first wins",
				slog.String("repo", unit.Repository),
				slog.String("target", unit.Target()),
				slog.String("chosen", customs[0]),
				slog.Any("discarded", conflicting))
		}
		return Resolved{
			Unit:       unit,
			Permission: Permission{Value: customs[0], Source: SourceCustom},
		}
	}

	for _, token := range catalog.Ladder {
		for _, have := range standards {
			if have == token {
				return Resolved{
					Unit:       unit,
					Permission: Permission{Value: token, Source: SourceStandard},
				}
			}
		}
	}

	// No role information at all: least privilege, not an error.
	return Resolved{
		Unit:       unit,
		Permission: Permission{Value: catalog.TokenPull, Source: SourceStandard},
	}
}

// distinctAfterFirst returns the custom role names that differ from the
// winning first one.
func distinctAfterFirst(customs []string) []string {
	var out []string
	seen := map[string]bool{customs[0]: true}
	for _, name := range customs[1:] {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
