// Package balance cross-checks aggregate cash balances against aggregate
// budget envelope balances.
package balance

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"github.com/shopspring/decimal"
)

// Labels of the total rows in hledger CSV reports.
const (
	NetLabel   = "Net:"
	TotalLabel = "total"
)

// Report commands used for each side of the check.
const (
	BalanceSheetCommand = "bs"
	BalanceCommand      = "bal"
)

// ErrTotalNotFound is returned when a report has no row with the wanted label.
var ErrTotalNotFound = errors.New("total row not found")

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// Reporter runs a summary report restricted to a set of accounts.
type Reporter interface {
	Report(ctx context.Context, command string, accounts []string) ([]byte, error)
}

// Result holds both totals and whether they agree.
type Result struct {
	Net      decimal.Decimal
	Envelope decimal.Decimal
	Match    bool
}

// ExitCode is the process exit code for the result.
func (r Result) ExitCode() int {
	if r.Match {
		return 0
	}
	return 1
}

// Reconciler compares the net cash balance with the total envelope balance.
type Reconciler struct {
	reporter Reporter
}

// NewReconciler creates a reconciler backed by reporter.
func NewReconciler(reporter Reporter) *Reconciler {
	return &Reconciler{reporter: reporter}
}

// Reconcile fetches both totals and compares them exactly.
func (r *Reconciler) Reconcile(ctx context.Context, cashAccounts, budgetAccounts []string) (Result, error) {
	net, err := r.total(ctx, BalanceSheetCommand, cashAccounts, NetLabel)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get net cash balance: %w", err)
	}

	envelope, err := r.total(ctx, BalanceCommand, budgetAccounts, TotalLabel)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get envelope balance: %w", err)
	}

	result := Result{
		Net:      net,
		Envelope: envelope,
		Match:    net.Equal(envelope),
	}

	slog.Debug("reconciled balances",
		"net", net.String(),
		"envelope", envelope.String(),
		"match", result.Match)

	return result, nil
}

func (r *Reconciler) total(ctx context.Context, command string, accounts []string, label string) (decimal.Decimal, error) {
	out, err := r.reporter.Report(ctx, command, accounts)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return ExtractTotal(out, label)
}

// ExtractTotal finds the first CSV row whose first column is label and
// parses its second column after dropping everything but digits, '-' and '.'.
func ExtractTotal(report []byte, label string) (decimal.Decimal, error) {
	reader := csv.NewReader(bytes.NewReader(report))
	reader.FieldsPerRecord = -1

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrTotalNotFound, label)
		}
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("failed to parse report: %w", err)
		}
		if len(row) < 2 || row[0] != label {
			continue
		}

		value, err := decimal.NewFromString(nonNumeric.ReplaceAllString(row[1], ""))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("invalid %s amount %q: %w", label, row[1], err)
		}
		return value, nil
	}
}
