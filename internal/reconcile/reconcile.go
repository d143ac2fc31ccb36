// Package reconcile applies resolved grants against the forge: existence
// checks first, then one idempotent create-or-update call per unit, or a
// simulated outcome in dry-run mode.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/kazz187/repoguild/internal/forge"
	"github.com/kazz187/repoguild/internal/grant"
	"github.com/kazz187/repoguild/pkg/cerr"
	"github.com/kazz187/repoguild/pkg/clog"
	"github.com/kazz187/repoguild/pkg/panicerr"
)

type Result string

const (
	ResultGranted Result = "granted"
	ResultSkipped Result = "skipped"
	ResultFailed  Result = "failed"
)

// Outcome is the terminal state of one unit after a single pass. There
// is no retry loop; every unit ends up in exactly one of these.
type Outcome struct {
	Unit       *grant.Unit
	Permission grant.Permission
	Result     Result
	Reason     string
}

// Summary is the run total reported to the invoking surface.
type Summary struct {
	Granted int
	Skipped int
	Failed  int
	DryRun  bool
}

type Reconciler struct {
	client   forge.Client
	org      string
	dryRun   bool
	parallel int

	granted atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

func New(client forge.Client, org string, dryRun bool, parallel int) *Reconciler {
	if parallel < 1 {
		parallel = 1
	}
	return &Reconciler{
		client:   client,
		org:      org,
		dryRun:   dryRun,
		parallel: parallel,
	}
}

// Run reconciles every resolved grant. Units are independent: they may
// run concurrently, each performing its own check-then-grant sequence,
// and outcome order matches the input order regardless of scheduling.
func (r *Reconciler) Run(ctx context.Context, resolved []grant.Resolved) ([]Outcome, Summary) {
	r.granted.Store(0)
	r.skipped.Store(0)
	r.failed.Store(0)

	outcomes := make([]Outcome, len(resolved))
	p := pool.New().WithMaxGoroutines(r.parallel)
	for i, res := range resolved {
		p.Go(func() {
			if err := panicerr.Safe(func() error {
				outcomes[i] = r.reconcileUnit(ctx, res)
				return nil
			})(); err != nil {
				outcomes[i] = Outcome{
					Unit:       res.Unit,
					Permission: res.Permission,
					Result:     ResultFailed,
					Reason:     err.Error(),
				}
			}
			r.count(outcomes[i].Result)
		})
	}
	p.Wait()

	return outcomes, Summary{
		Granted: int(r.granted.Load()),
		Skipped: int(r.skipped.Load()),
		Failed:  int(r.failed.Load()),
		DryRun:  r.dryRun,
	}
}

func (r *Reconciler) count(result Result) {
	switch result {
	case ResultGranted:
		r.granted.Add(1)
	case ResultSkipped:
		r.skipped.Add(1)
	case ResultFailed:
		r.failed.Add(1)
	}
}

func (r *Reconciler) reconcileUnit(ctx context.Context, res grant.Resolved) Outcome {
	unit := res.Unit
	ctx = clog.ContextWithSlog(ctx)
	clog.AddAttribute(ctx, "repo", unit.Repository)
	clog.AddAttribute(ctx, "target", unit.Target())
	clog.AddAttribute(ctx, "permission", res.Permission.Value)

	outcome := Outcome{Unit: unit, Permission: res.Permission}

	exists, err := r.client.RepositoryExists(ctx, r.org, unit.Repository)
	if err != nil {
		return r.fail(ctx, outcome, fmt.Errorf("repository check failed: %w", err))
	}
	if !exists {
		return r.skip(ctx, outcome, fmt.Sprintf("repository %s/%s not found", r.org, unit.Repository))
	}

	if unit.Kind == grant.KindTeam {
		if _, err := r.client.Team(ctx, r.org, unit.TeamSlug); err != nil {
			if cerr.IsCode(err, cerr.NotFound) {
				return r.skip(ctx, outcome, fmt.Sprintf(
					"team %s not found; team provisioning is a prerequisite step", unit.TeamSlug))
			}
			return r.fail(ctx, outcome, fmt.Errorf("team lookup failed: %w", err))
		}
	}

	if r.dryRun {
		outcome.Result = ResultGranted
		outcome.Reason = "dry-run, no changes made"
		slog.InfoContext(ctx, "would grant", slog.String("result", "simulated"))
		return outcome
	}

	switch unit.Kind {
	case grant.KindTeam:
		err = r.client.GrantTeamRepository(ctx, r.org, unit.TeamSlug, unit.Repository, res.Permission.Value)
	case grant.KindUser:
		err = r.client.GrantUserRepository(ctx, r.org, unit.Repository, unit.Subject, res.Permission.Value)
	}
	if err != nil {
		return r.fail(ctx, outcome, err)
	}

	outcome.Result = ResultGranted
	slog.InfoContext(ctx, "granted", slog.String("result", string(ResultGranted)),
		slog.String("source", res.Permission.Source.String()))
	return outcome
}

func (r *Reconciler) skip(ctx context.Context, outcome Outcome, reason string) Outcome {
	outcome.Result = ResultSkipped
	outcome.Reason = reason
	slog.WarnContext(ctx, "skipped", slog.String("reason", reason))
	return outcome
}

func (r *Reconciler) fail(ctx context.Context, outcome Outcome, err error) Outcome {
	outcome.Result = ResultFailed
	outcome.Reason = err.Error()
	clog.AddError(ctx, err)
	var cErr *cerr.Error
	if errors.As(err, &cErr) && cErr.Stack != "" {
		clog.AddStack(ctx, cErr.Stack)
	}
	slog.ErrorContext(ctx, "grant failed")
	return outcome
}
