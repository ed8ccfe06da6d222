package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/envelope-check/internal/common"
	"github.com/google/uuid"
)

// RunKind names the check a run performed.
type RunKind string

// Run kinds.
const (
	RunTransactions RunKind = "transactions"
	RunBalances     RunKind = "balances"
	RunBills        RunKind = "bills"
)

// IsValid reports whether k is a known run kind.
func (k RunKind) IsValid() bool {
	switch k {
	case RunTransactions, RunBalances, RunBills:
		return true
	default:
		return false
	}
}

// DefaultListLimit caps ListRuns when no limit is given.
const DefaultListLimit = 20

// Run is one recorded invocation of a check.
type Run struct {
	CreatedAt    time.Time
	Kind         RunKind
	Period       string
	LedgerFile   string
	Summary      string
	FindingCount int
	ID           uuid.UUID
	Passed       bool
}

// RunFilter narrows ListRuns. Zero values match everything.
type RunFilter struct {
	Kind  RunKind
	Limit int
}

// Storage records and lists check runs.
type Storage interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	Close() error
}

var _ Storage = (*SQLiteStorage)(nil)

// SaveRun inserts run, assigning an ID and timestamp when they are unset.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *Run) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, period, passed, finding_count, summary, ledger_file, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID.String(), string(run.Kind), run.Period, run.Passed, run.FindingCount,
		run.Summary, run.LedgerFile, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun loads a single run by ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, period, passed, finding_count, summary, ledger_file, created_at
		FROM runs WHERE id = ?
	`, id.String())

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.Limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, filter.Limit)
	}
	if filter.Kind != "" && !filter.Kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRunKind, filter.Kind)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}

	var query strings.Builder
	query.WriteString(`SELECT id, kind, period, passed, finding_count, summary, ledger_file, created_at FROM runs`)
	args := make([]any, 0, 2)
	if filter.Kind != "" {
		query.WriteString(` WHERE kind = ?`)
		args = append(args, string(filter.Kind))
	}
	query.WriteString(` ORDER BY created_at DESC, rowid DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run  Run
		id   string
		kind string
	)
	err := row.Scan(&id, &kind, &run.Period, &run.Passed, &run.FindingCount,
		&run.Summary, &run.LedgerFile, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run id %q: %w", id, err)
	}
	run.ID = parsed
	run.Kind = RunKind(kind)
	return &run, nil
}
