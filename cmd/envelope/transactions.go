package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/envelope-check/internal/cli"
	"github.com/Veraticus/envelope-check/internal/common"
	"github.com/Veraticus/envelope-check/internal/config"
	"github.com/Veraticus/envelope-check/internal/ledger"
	"github.com/Veraticus/envelope-check/internal/reconcile"
	"github.com/Veraticus/envelope-check/internal/storage"
	"github.com/Veraticus/envelope-check/internal/tui"
	"github.com/spf13/cobra"
)

func transactionsCmd(a *app) *cobra.Command {
	var (
		period      string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "Check that every budget envelope is offset by a matching expense",
		Long: `Streams the journal's postings for a period, groups them into transactions
and checks each one:

  - every (Budget:X) envelope posting has an Expenses:X posting of the
    opposite amount
  - envelope accounts are written with both parentheses
  - amounts can be read as numbers

With --strict, envelopes and expenses left without a partner are reported too.
Exits non-zero when any transaction has findings.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTransactions(cmd.Context(), period, interactive)
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", `period to check (default: current month, "all" for every date)`)
	cmd.Flags().Bool("strict", false, "also report envelopes and expenses left unmatched")
	cmd.Flags().Bool("no-progress", false, "do not show a progress spinner")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse findings in a pager instead of printing them")

	_ = a.viper.BindPFlag(config.KeyStrict, cmd.Flags().Lookup("strict"))
	_ = a.viper.BindPFlag(config.KeyProgressOff, cmd.Flags().Lookup("no-progress"))

	return cmd
}

func (a *app) runTransactions(ctx context.Context, periodFlag string, interactive bool) error {
	runner, err := a.ledgerRunner()
	if err != nil {
		return err
	}

	period := a.cfg.ResolvePeriod(periodFlag)
	engine := reconcile.NewEngine(ledger.NewClient(runner), reconcile.WithUnmatched(a.cfg.Strict))
	progress := cli.NewProgress(a.stderr, "Checking transactions", !a.cfg.NoProgress && !interactive)

	var (
		summary reconcile.Summary
		failing []reconcile.Result
	)
	for result, err := range engine.Run(ctx, period) {
		if err != nil {
			progress.Finish()
			a.reportOpenTransaction(err)
			return fmt.Errorf("failed to check transactions: %w", err)
		}
		progress.Add()
		summary.Add(result)

		if result.OK() {
			continue
		}
		if interactive {
			failing = append(failing, result)
			continue
		}
		if err := cli.ReportResult(a.stdout, result); err != nil {
			progress.Finish()
			return fmt.Errorf("failed to report transaction %s: %w", result.Transaction.ID, err)
		}
	}
	progress.Finish()

	if interactive && len(failing) > 0 {
		if err := tui.Browse(ctx, period, failing); err != nil {
			return err
		}
	}

	if err := cli.ReportSummary(a.stdout, period, summary); err != nil {
		return fmt.Errorf("failed to report summary: %w", err)
	}

	passed := summary.Failed == 0
	a.recordRun(ctx, storage.Run{
		Kind:         storage.RunTransactions,
		Period:       period,
		Passed:       passed,
		FindingCount: summary.Findings,
		Summary:      fmt.Sprintf("%d transaction(s), %d with findings", summary.Transactions, summary.Failed),
	})

	if !passed {
		return common.NewExitError(1, fmt.Sprintf("%d transaction(s) with findings", summary.Failed))
	}
	return nil
}

// reportOpenTransaction prints the postings read so far of the transaction
// that was open when the ledger output broke off.
func (a *app) reportOpenTransaction(err error) {
	var streamErr *reconcile.StreamError
	if !errors.As(err, &streamErr) || streamErr.Partial.ID == "" {
		return
	}
	_, _ = fmt.Fprintln(a.stderr, cli.FormatWarning("Transaction "+streamErr.Partial.ID+" was being read when the ledger output failed:"))
	_ = cli.PrintTransaction(a.stderr, streamErr.Partial)
}
