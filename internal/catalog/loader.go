package catalog

import (
	"context"
	"log/slog"

	"github.com/kazz187/repoguild/internal/forge"
)

// Load fetches the organization's custom repository roles once and
// builds the run's catalog. A fetch failure is not fatal: the run
// degrades to standard-only resolution with a warning.
func Load(ctx context.Context, client forge.Client, org string) *Catalog {
	roles, err := client.ListCustomRoles(ctx, org)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch custom repository roles, continuing standard-only",
			slog.String("org", org), slog.Any("error", err))
		return New(nil)
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	if len(names) > 0 {
		slog.DebugContext(ctx, "loaded custom repository roles",
			slog.String("org", org), slog.Int("count", len(names)))
	}
	return New(names)
}
