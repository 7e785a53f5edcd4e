// Package store persists validation runs and their issues in Postgres.
// Persistence is optional: commands run without it when DATABASE_URL is
// unset.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/specklesystems/speckle-automate-checker/internal/rules"
	"github.com/specklesystems/speckle-automate-checker/internal/rules/engine"
)

var ErrNotFound = errors.New("not found")

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one persisted validation run. Report carries the full aggregated
// report JSON; list queries leave it empty.
type Run struct {
	ID          uuid.UUID       `json:"id"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Status      string          `json:"status"`
	ProjectID   string          `json:"project_id"`
	ModelID     string          `json:"model_id"`
	ObjectCount int             `json:"object_count"`
	RuleCount   int             `json:"rule_count"`
	MinSeverity rules.Severity  `json:"min_severity"`
	Summary     engine.Summary  `json:"summary"`
	Report      json.RawMessage `json:"report,omitempty"`
	Error       string          `json:"error,omitempty"`
}

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) InsertRun(ctx context.Context, run Run) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO validation_runs (
			id, started_at, finished_at, status, project_id, model_id,
			object_count, rule_count, min_severity,
			summary_info, summary_warning, summary_error, report, error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Status, run.ProjectID, run.ModelID,
		run.ObjectCount, run.RuleCount, string(run.MinSeverity),
		run.Summary.Info, run.Summary.Warning, run.Summary.Error, run.Report, run.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// InsertIssues bulk-loads a run's issues with COPY.
func (s *Store) InsertIssues(ctx context.Context, runID uuid.UUID, issues []engine.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, []any{runID, issue.ObjectID, issue.RuleNumber, issue.Category, issue.Message, string(issue.Severity)})
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"validation_issues"},
		[]string{"run_id", "object_id", "rule_number", "category", "message", "severity"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("insert issues for run %s: %w", runID, err)
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, started_at, finished_at, status, project_id, model_id,
		       object_count, rule_count, min_severity,
		       summary_info, summary_warning, summary_error, report, error
		FROM validation_runs WHERE id = $1`, id)

	var run Run
	var minSeverity string
	err := row.Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.ProjectID, &run.ModelID,
		&run.ObjectCount, &run.RuleCount, &minSeverity,
		&run.Summary.Info, &run.Summary.Warning, &run.Summary.Error, &run.Report, &run.Error,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	run.Summary.Total = run.Summary.Info + run.Summary.Warning + run.Summary.Error
	run.MinSeverity = rules.Severity(minSeverity)
	return run, nil
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, started_at, finished_at, status, project_id, model_id,
		       object_count, rule_count, min_severity,
		       summary_info, summary_warning, summary_error, error
		FROM validation_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var minSeverity string
		if err := rows.Scan(
			&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.ProjectID, &run.ModelID,
			&run.ObjectCount, &run.RuleCount, &minSeverity,
			&run.Summary.Info, &run.Summary.Warning, &run.Summary.Error, &run.Error,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Summary.Total = run.Summary.Info + run.Summary.Warning + run.Summary.Error
		run.MinSeverity = rules.Severity(minSeverity)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListIssues returns a run's issues in object then rule order, matching
// the order they were recorded in.
func (s *Store) ListIssues(ctx context.Context, runID uuid.UUID) ([]engine.Issue, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT object_id, rule_number, category, message, severity
		FROM validation_issues WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list issues for run %s: %w", runID, err)
	}
	defer rows.Close()

	var issues []engine.Issue
	for rows.Next() {
		var issue engine.Issue
		var severity string
		if err := rows.Scan(&issue.ObjectID, &issue.RuleNumber, &issue.Category, &issue.Message, &severity); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issue.Severity = rules.Severity(severity)
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}
