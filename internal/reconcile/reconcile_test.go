package reconcile

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/repoguild/internal/catalog"
	"github.com/kazz187/repoguild/internal/forge"
	"github.com/kazz187/repoguild/internal/grant"
	"github.com/kazz187/repoguild/pkg/cerr"
)

type grantCall struct {
	kind       string
	target     string
	repo       string
	permission string
}

// fakeForge simulates remote existence state and records mutations.
type fakeForge struct {
	mu        sync.Mutex
	repos     map[string]bool
	teams     map[string]bool
	grantErr  error
	grants    []grantCall
	existsErr error
}

func (f *fakeForge) Organization(ctx context.Context, org string) error { return nil }

func (f *fakeForge) ListCustomRoles(ctx context.Context, org string) ([]forge.CustomRole, error) {
	return nil, nil
}

func (f *fakeForge) RepositoryExists(ctx context.Context, org, repo string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.repos[repo], nil
}

func (f *fakeForge) Team(ctx context.Context, org, slug string) (*forge.Team, error) {
	if f.teams[slug] {
		return &forge.Team{Slug: slug, Name: slug}, nil
	}
	return nil, cerr.NewError(cerr.NotFound, "team not found", nil)
}

func (f *fakeForge) GrantTeamRepository(ctx context.Context, org, teamSlug, repo, permission string) error {
	if f.grantErr != nil {
		return f.grantErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants = append(f.grants, grantCall{kind: "team", target: teamSlug, repo: repo, permission: permission})
	return nil
}

func (f *fakeForge) GrantUserRepository(ctx context.Context, org, repo, user, permission string) error {
	if f.grantErr != nil {
		return f.grantErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants = append(f.grants, grantCall{kind: "user", target: user, repo: repo, permission: permission})
	return nil
}

func resolvedTeamGrant(repo, team, permission string) grant.Resolved {
	unit := &grant.Unit{
		Kind:       grant.KindTeam,
		Repository: repo,
		Team:       team,
		TeamSlug:   team,
	}
	return grant.Resolved{
		Unit:       unit,
		Permission: grant.Permission{Value: permission, Source: grant.SourceStandard},
	}
}

func TestRunGrantsExistingTargets(t *testing.T) {
	f := &fakeForge{
		repos: map[string]bool{"svc": true},
		teams: map[string]bool{"core": true},
	}
	r := New(f, "acme", false, 1)

	outcomes, summary := r.Run(context.Background(), []grant.Resolved{
		resolvedTeamGrant("svc", "core", catalog.TokenPush),
	})

	require.Len(t, outcomes, 1)
	assert.Equal(t, ResultGranted, outcomes[0].Result)
	assert.Equal(t, 1, summary.Granted)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, f.grants, 1)
	assert.Equal(t, grantCall{kind: "team", target: "core", repo: "svc", permission: "push"}, f.grants[0])
}

func TestRunSkipsMissingRepository(t *testing.T) {
	f := &fakeForge{
		repos: map[string]bool{},
		teams: map[string]bool{"core": true},
	}
	r := New(f, "acme", false, 1)

	outcomes, summary := r.Run(context.Background(), []grant.Resolved{
		resolvedTeamGrant("gone", "core", catalog.TokenPull),
	})

	require.Len(t, outcomes, 1)
	assert.Equal(t, ResultSkipped, outcomes[0].Result)
	assert.Contains(t, outcomes[0].Reason, "repository")
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, f.grants)
}

func TestRunSkipsMissingTeamWithPrerequisiteHint(t *testing.T) {
	f := &fakeForge{
		repos: map[string]bool{"svc": true},
		teams: map[string]bool{},
	}
	r := New(f, "acme", false, 1)

	outcomes, _ := r.Run(context.Background(), []grant.Resolved{
		resolvedTeamGrant("svc", "ghost", catalog.TokenPull),
	})

	require.Len(t, outcomes, 1)
	assert.Equal(t, ResultSkipped, outcomes[0].Result)
	assert.Contains(t, outcomes[0].Reason, "team ghost not found")
	assert.Contains(t, outcomes[0].Reason, "prerequisite")
	assert.Empty(t, f.grants)
}

func TestRunDryRunMatchesLiveDecisions(t *testing.T) {
	resolved := []grant.Resolved{
		resolvedTeamGrant("svc", "core", catalog.TokenAdmin),
		resolvedTeamGrant("gone", "core", catalog.TokenPull),
	}
	newFake := func() *fakeForge {
		return &fakeForge{
			repos: map[string]bool{"svc": true},
			teams: map[string]bool{"core": true},
		}
	}

	liveForge := newFake()
	liveOutcomes, liveSummary := New(liveForge, "acme", false, 1).Run(context.Background(), resolved)

	dryForge := newFake()
	dryOutcomes, drySummary := New(dryForge, "acme", true, 1).Run(context.Background(), resolved)

	require.Len(t, dryOutcomes, len(liveOutcomes))
	for i := range liveOutcomes {
		assert.Equal(t, liveOutcomes[i].Result, dryOutcomes[i].Result)
		assert.Equal(t, liveOutcomes[i].Permission, dryOutcomes[i].Permission)
	}
	assert.Equal(t, liveSummary.Granted, drySummary.Granted)
	assert.Equal(t, liveSummary.Skipped, drySummary.Skipped)

	// Only the mutating call differs.
	assert.Len(t, liveForge.grants, 1)
	assert.Empty(t, dryForge.grants)
	assert.True(t, drySummary.DryRun)
	assert.False(t, liveSummary.DryRun)
}

func TestRunRecordsGrantFailures(t *testing.T) {
	f := &fakeForge{
		repos:    map[string]bool{"svc": true},
		teams:    map[string]bool{"core": true},
		grantErr: cerr.NewError(cerr.RemoteRejected, "PUT returned 422: validation failed", nil),
	}
	r := New(f, "acme", false, 1)

	outcomes, summary := r.Run(context.Background(), []grant.Resolved{
		resolvedTeamGrant("svc", "core", catalog.TokenPush),
	})

	require.Len(t, outcomes, 1)
	assert.Equal(t, ResultFailed, outcomes[0].Result)
	assert.Contains(t, outcomes[0].Reason, "422")
	assert.Equal(t, 1, summary.Failed)
}

func TestRunFailsWhenRepositoryCheckErrors(t *testing.T) {
	f := &fakeForge{
		existsErr: cerr.NewError(cerr.RemoteRejected, "GET returned 500", nil),
	}
	r := New(f, "acme", false, 1)

	outcomes, summary := r.Run(context.Background(), []grant.Resolved{
		resolvedTeamGrant("svc", "core", catalog.TokenPull),
	})

	require.Len(t, outcomes, 1)
	assert.Equal(t, ResultFailed, outcomes[0].Result)
	assert.Contains(t, outcomes[0].Reason, "repository check failed")
	assert.Equal(t, 1, summary.Failed)
}

func TestRunUserGrants(t *testing.T) {
	f := &fakeForge{
		repos: map[string]bool{"svc": true},
	}
	r := New(f, "acme", false, 1)

	unit := &grant.Unit{Kind: grant.KindUser, Repository: "svc", Subject: "alice"}
	outcomes, _ := r.Run(context.Background(), []grant.Resolved{{
		Unit:       unit,
		Permission: grant.Permission{Value: "Security Reviewer", Source: grant.SourceCustom},
	}})

	require.Len(t, outcomes, 1)
	assert.Equal(t, ResultGranted, outcomes[0].Result)
	require.Len(t, f.grants, 1)
	assert.Equal(t, grantCall{kind: "user", target: "alice", repo: "svc", permission: "Security Reviewer"}, f.grants[0])
}

func TestRunParallelCountsStayConsistent(t *testing.T) {
	f := &fakeForge{
		repos: map[string]bool{"svc": true},
		teams: map[string]bool{"core": true},
	}
	r := New(f, "acme", false, 8)

	var resolved []grant.Resolved
	for i := 0; i < 50; i++ {
		resolved = append(resolved, resolvedTeamGrant("svc", "core", catalog.TokenPull))
	}
	outcomes, summary := r.Run(context.Background(), resolved)

	assert.Len(t, outcomes, 50)
	assert.Equal(t, 50, summary.Granted)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, f.grants, 50)
}
