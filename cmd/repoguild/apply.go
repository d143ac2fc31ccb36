package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/repoguild/internal/catalog"
	"github.com/kazz187/repoguild/internal/config"
	"github.com/kazz187/repoguild/internal/entry"
	"github.com/kazz187/repoguild/internal/forge"
	"github.com/kazz187/repoguild/internal/grant"
	"github.com/kazz187/repoguild/internal/reconcile"
	"github.com/kazz187/repoguild/internal/watcher"
	"github.com/kazz187/repoguild/pkg/cerr"
	"github.com/kazz187/repoguild/pkg/clog"
)

func handleApply() int {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	setupLogger(env)

	org := *applyOrg
	if org == "" {
		org = env.Org
	}
	if org == "" {
		fmt.Fprintln(os.Stderr, "Error: no organization given (use --org or REPOGUILD_ORG)")
		return 1
	}
	parallel := *applyParallel
	if parallel < 1 {
		parallel = env.Parallel
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := forge.NewHTTPClient(env.APIURL, env.Token, env.Timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating forge client: %v\n", err)
		return 1
	}

	// Prerequisite validation: bad credentials or a missing organization
	// abort before any unit is processed.
	if err := client.Organization(ctx, org); err != nil {
		switch cerr.CodeOf(err) {
		case cerr.Unauthenticated:
			fmt.Fprintf(os.Stderr, "Error: authentication against %s failed: %v\n", env.APIURL, err)
		case cerr.NotFound:
			fmt.Fprintf(os.Stderr, "Error: organization %s not found\n", org)
		default:
			fmt.Fprintf(os.Stderr, "Error validating organization %s: %v\n", org, err)
		}
		return 1
	}

	run := func(ctx context.Context) (reconcile.Summary, error) {
		return runApply(ctx, client, env, org, parallel)
	}

	summary, err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *applyWatch {
		w, err := watcher.New(*applyFile, func(ctx context.Context) error {
			_, err := run(ctx)
			return err
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error starting watch mode: %v\n", err)
			return 1
		}
		if err := w.Watch(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", *applyFile, err)
			return 1
		}
		fmt.Println("\nWatch mode stopped")
		return 0
	}

	if summary.Failed > 0 {
		return 1
	}
	return 0
}

// runApply executes one pass of the full pipeline: read, aggregate,
// resolve, reconcile, report.
func runApply(ctx context.Context, client forge.Client, env *config.Env, org string, parallel int) (reconcile.Summary, error) {
	runID := ulid.Make().String()
	startedAt := time.Now()
	ctx = clog.ContextWithSlog(ctx)
	clog.AddAttribute(ctx, "run", runID)

	entries, err := entry.Read(ctx, *applyFile, env.S3Region)
	if err != nil {
		return reconcile.Summary{}, err
	}

	cat := catalog.Load(ctx, client, org)
	units := grant.Aggregate(entries)
	slog.InfoContext(ctx, "aggregated entries",
		slog.Int("rows", len(entries)), slog.Int("units", len(units)))

	resolved := make([]grant.Resolved, 0, len(units))
	for _, unit := range units {
		resolved = append(resolved, grant.Resolve(ctx, unit, cat))
	}

	r := reconcile.New(client, org, *applyDryRun, parallel)
	outcomes, summary := r.Run(ctx, resolved)

	if *applyReport != "" {
		report := reconcile.NewReport(runID, org, startedAt, outcomes, summary)
		if err := reconcile.WriteReport(ctx, *applyReport, env.S3Region, report); err != nil {
			slog.ErrorContext(ctx, "failed to write run report", slog.Any("error", err))
		}
	}

	printSummary(summary)
	return summary, nil
}

func printSummary(s reconcile.Summary) {
	if s.DryRun {
		color.New(color.FgCyan, color.Bold).Println("DRY RUN: no changes were made")
	}
	color.New(color.FgGreen).Printf("granted: %d  ", s.Granted)
	color.New(color.FgYellow).Printf("skipped: %d  ", s.Skipped)
	c := color.New(color.FgRed)
	if s.Failed == 0 {
		c = color.New(color.Faint)
	}
	c.Printf("failed: %d\n", s.Failed)
}

func setupLogger(env *config.Env) {
	handler := clog.NewAttributesHandler(
		clog.NewConsoleHandler(os.Stderr, clog.WithLevel(env.SlogLevel())))
	slog.SetDefault(slog.New(handler))
}
