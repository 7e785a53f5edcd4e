// Package runner orchestrates a validation pass: load the rule table,
// fetch the published model, evaluate every object, aggregate the report,
// and record the outcome.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/specklesystems/speckle-automate-checker/internal/config"
	"github.com/specklesystems/speckle-automate-checker/internal/metrics"
	"github.com/specklesystems/speckle-automate-checker/internal/model"
	"github.com/specklesystems/speckle-automate-checker/internal/rules"
	"github.com/specklesystems/speckle-automate-checker/internal/rules/engine"
	"github.com/specklesystems/speckle-automate-checker/internal/rules/sheet"
	"github.com/specklesystems/speckle-automate-checker/internal/speckle"
	"github.com/specklesystems/speckle-automate-checker/internal/store"
)

// ErrRunInProgress is returned when a run is requested while another one
// holds the runner. Callers retry or surface it; runs never queue.
var ErrRunInProgress = errors.New("a validation run is already in progress")

// Result is the outcome of one validation pass. RunID is set only when
// persistence is configured.
type Result struct {
	RunID  uuid.UUID
	Report *engine.Report
}

// Runner executes validation passes one at a time.
type Runner struct {
	cfg     config.Config
	speckle *speckle.Client
	store   *store.Store // nil disables persistence
	http    *http.Client
	logger  *slog.Logger
	mu      sync.Mutex
}

func New(cfg config.Config, client *speckle.Client, st *store.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:     cfg,
		speckle: client,
		store:   st,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
		logger:  logger,
	}
}

// Run executes one validation pass. Concurrent calls fail fast with
// ErrRunInProgress instead of queueing behind the active run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if !r.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.mu.Unlock()

	started := time.Now()
	report, err := r.run(ctx)
	elapsed := time.Since(started)
	metrics.RunDuration.Observe(elapsed.Seconds())

	if err != nil {
		metrics.RunsTotal.WithLabelValues(store.StatusFailed).Inc()
		r.logger.Error("validation run failed", "error", err, "duration", elapsed)
		runID := r.record(started, nil, err)
		return &Result{RunID: runID}, err
	}

	metrics.RunsTotal.WithLabelValues(store.StatusSucceeded).Inc()
	r.logger.Info("validation run finished",
		"duration", elapsed,
		"objects", report.ObjectCount,
		"rules", report.RuleCount,
		"issues", report.Summary.Total,
	)
	runID := r.record(started, report, nil)
	return &Result{RunID: runID, Report: report}, nil
}

// RunOnce adapts Run for the scheduler.
func (r *Runner) RunOnce(ctx context.Context) error {
	_, err := r.Run(ctx)
	return err
}

// LoadRules fetches and parses the rule table without evaluating it.
func (r *Runner) LoadRules(ctx context.Context) (*rules.Set, error) {
	rows, err := sheet.Load(ctx, r.http, r.cfg.RulesURL)
	if err != nil {
		return nil, fmt.Errorf("load rule table: %w", err)
	}
	set := rules.Parse(rows, r.cfg.FallbackSeverity)
	metrics.RulesLoaded.Set(float64(len(set.Rules)))
	metrics.RuleParseDiagnosticsTotal.Add(float64(len(set.Diagnostics)))
	if len(set.Diagnostics) > 0 {
		r.logger.Warn("rule table has diagnostics", "count", len(set.Diagnostics))
	}
	if len(set.Rules) == 0 {
		return nil, fmt.Errorf("rule table %s contains no valid rules", r.cfg.RulesURL)
	}
	return set, nil
}

func (r *Runner) run(ctx context.Context) (*engine.Report, error) {
	set, err := r.LoadRules(ctx)
	if err != nil {
		return nil, err
	}

	root, err := r.speckle.GetObject(ctx, r.cfg.SpeckleProjectID, r.cfg.SpeckleModelID)
	if err != nil {
		return nil, fmt.Errorf("fetch model: %w", err)
	}
	objects := model.Flatten(root)
	metrics.ObjectsEvaluated.Set(float64(len(objects)))
	r.logger.Info("model flattened", "objects", len(objects), "rules", len(set.Rules))

	issues, results, err := engine.Apply(ctx, set, objects, engine.Options{Workers: r.cfg.EvalWorkers})
	if err != nil {
		return nil, err
	}

	report := engine.Aggregate(issues, r.cfg.MinSeverity)
	report.ObjectCount = len(objects)
	report.RuleCount = len(set.Rules)
	report.Diagnostics = set.Diagnostics
	for _, res := range results {
		metrics.RuleEvaluationsTotal.WithLabelValues("passed").Add(float64(res.Passed))
		metrics.RuleEvaluationsTotal.WithLabelValues("failed").Add(float64(res.Failed))
		if res.Skipped {
			report.SkippedRules = append(report.SkippedRules, res.RuleNumber)
		}
	}
	metrics.IssuesTotal.WithLabelValues(string(rules.SeverityInfo)).Add(float64(report.Summary.Info))
	metrics.IssuesTotal.WithLabelValues(string(rules.SeverityWarning)).Add(float64(report.Summary.Warning))
	metrics.IssuesTotal.WithLabelValues(string(rules.SeverityError)).Add(float64(report.Summary.Error))
	return report, nil
}

// record persists the run outcome. It uses a fresh context so a run
// cancelled mid-flight still leaves a failed row behind.
func (r *Runner) record(started time.Time, report *engine.Report, runErr error) uuid.UUID {
	if r.store == nil {
		return uuid.Nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	run := store.Run{
		ID:          uuid.New(),
		StartedAt:   started.UTC(),
		FinishedAt:  time.Now().UTC(),
		Status:      store.StatusSucceeded,
		ProjectID:   r.cfg.SpeckleProjectID,
		ModelID:     r.cfg.SpeckleModelID,
		MinSeverity: r.cfg.MinSeverity,
	}

	var issues []engine.Issue
	if runErr != nil {
		run.Status = store.StatusFailed
		run.Error = runErr.Error()
	} else if report != nil {
		run.ObjectCount = report.ObjectCount
		run.RuleCount = report.RuleCount
		run.Summary = report.Summary
		if data, err := json.Marshal(report); err == nil {
			run.Report = data
		}
		issues = reportedIssues(report)
	}

	if err := r.store.InsertRun(ctx, run); err != nil {
		r.logger.Error("persist run failed", "error", err, "run_id", run.ID)
		return run.ID
	}
	if err := r.store.InsertIssues(ctx, run.ID, issues); err != nil {
		r.logger.Error("persist issues failed", "error", err, "run_id", run.ID)
	}
	return run.ID
}

// reportedIssues flattens a report's grouped issues back into the
// deterministic first-seen object order.
func reportedIssues(report *engine.Report) []engine.Issue {
	var out []engine.Issue
	for _, id := range report.Objects {
		out = append(out, report.Issues[id]...)
	}
	return out
}
