package reconcile

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/repoguild/pkg/storage"
)

// Report is the machine-readable record of one run, written when the
// operator passes --report. The path may be local or s3://.
type Report struct {
	RunID     string          `yaml:"run_id"`
	StartedAt time.Time       `yaml:"started_at"`
	Org       string          `yaml:"org"`
	DryRun    bool            `yaml:"dry_run"`
	Outcomes  []ReportOutcome `yaml:"outcomes"`
	Summary   ReportSummary   `yaml:"summary"`
}

type ReportOutcome struct {
	Repository string `yaml:"repository"`
	Target     string `yaml:"target"`
	Permission string `yaml:"permission"`
	Source     string `yaml:"source"`
	Result     string `yaml:"result"`
	Reason     string `yaml:"reason,omitempty"`
}

type ReportSummary struct {
	Granted int `yaml:"granted"`
	Skipped int `yaml:"skipped"`
	Failed  int `yaml:"failed"`
}

// NewReport assembles the report document from a finished run.
func NewReport(runID, org string, startedAt time.Time, outcomes []Outcome, summary Summary) *Report {
	report := &Report{
		RunID:     runID,
		StartedAt: startedAt,
		Org:       org,
		DryRun:    summary.DryRun,
		Outcomes:  make([]ReportOutcome, 0, len(outcomes)),
		Summary: ReportSummary{
			Granted: summary.Granted,
			Skipped: summary.Skipped,
			Failed:  summary.Failed,
		},
	}
	for _, o := range outcomes {
		report.Outcomes = append(report.Outcomes, ReportOutcome{
			Repository: o.Unit.Repository,
			Target:     o.Unit.Target(),
			Permission: o.Permission.Value,
			Source:     o.Permission.Source.String(),
			Result:     string(o.Result),
			Reason:     o.Reason,
		})
	}
	return report
}

// WriteReport serializes the report as YAML to the given path.
func WriteReport(ctx context.Context, path, s3Region string, report *Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	store, key, err := storage.Open(ctx, path, s3Region)
	if err != nil {
		return fmt.Errorf("failed to open report path %s: %w", path, err)
	}
	if err := store.Write(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
