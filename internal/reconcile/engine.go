package reconcile

import (
	"context"
	"iter"
	"log/slog"

	"github.com/Veraticus/envelope-check/internal/model"
)

// PostingSource streams the postings of a reporting period.
type PostingSource interface {
	Postings(ctx context.Context, period string) iter.Seq2[model.Posting, error]
}

// Result is the outcome of validating one transaction.
type Result struct {
	Transaction Transaction
	Findings    []Finding
}

// OK reports whether the transaction reconciled cleanly.
func (r Result) OK() bool {
	return len(r.Findings) == 0
}

// Summary counts the results of one run.
type Summary struct {
	Transactions int
	Failed       int
	Findings     int
}

// Add accounts for one result.
func (s *Summary) Add(r Result) {
	s.Transactions++
	if !r.OK() {
		s.Failed++
		s.Findings += len(r.Findings)
	}
}

// Engine validates every transaction of a period. It keeps no state
// between runs.
type Engine struct {
	source PostingSource
	opts   []Option
}

// NewEngine creates an engine reading from source.
func NewEngine(source PostingSource, opts ...Option) *Engine {
	return &Engine{source: source, opts: opts}
}

// Run streams one Result per transaction. A stream failure is yielded as a
// *StreamError and ends the run; findings never do.
func (e *Engine) Run(ctx context.Context, period string) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		for txn, err := range GroupTransactions(e.source.Postings(ctx, period)) {
			if err != nil {
				yield(Result{}, err)
				return
			}

			result := Result{Transaction: txn, Findings: Findings(txn, e.opts...)}
			if !result.OK() {
				slog.Debug("transaction has findings", "txnidx", txn.ID, "count", len(result.Findings))
			}
			if !yield(result, nil) {
				return
			}
		}
	}
}

// Transactions streams the grouped transactions of a period without
// validating them.
func (e *Engine) Transactions(ctx context.Context, period string) iter.Seq2[Transaction, error] {
	return GroupTransactions(e.source.Postings(ctx, period))
}
