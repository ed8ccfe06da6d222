package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/envelope-check/internal/bills"
	"github.com/Veraticus/envelope-check/internal/cli"
	"github.com/Veraticus/envelope-check/internal/common"
	"github.com/Veraticus/envelope-check/internal/config"
	"github.com/Veraticus/envelope-check/internal/ledger"
	"github.com/Veraticus/envelope-check/internal/reconcile"
	"github.com/Veraticus/envelope-check/internal/storage"
	"github.com/spf13/cobra"
)

func billsCmd(a *app) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "bills",
		Short: "Report which recurring bills were paid in a period",
		Long: `Loads bill rules from a YAML file and reports, for each bill, whether some
transaction in the period matched it.

The bill file is taken from --bill-file, then $BILL_FILE_V2, then $BILL_FILE,
and finally bills.yaml next to the ledger file. Exits non-zero when a bill is
not paid.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBills(cmd.Context(), period)
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", `period to check (default: current month, "all" for every date)`)
	cmd.Flags().StringP("bill-file", "b", "", "YAML file with bill rules")

	_ = a.viper.BindPFlag(config.KeyBillFile, cmd.Flags().Lookup("bill-file"))

	return cmd
}

func (a *app) runBills(ctx context.Context, periodFlag string) error {
	path, err := config.ResolveBillFile(a.cfg.BillFile, a.cfg.LedgerFile)
	if err != nil {
		return err
	}

	predicates, err := bills.LoadFile(path)
	if err != nil {
		return common.NewUserError("fix the bill file "+path, err)
	}
	slog.Debug("loaded bill rules", "path", path, "count", len(predicates))

	runner, err := a.ledgerRunner()
	if err != nil {
		return err
	}

	period := a.cfg.ResolvePeriod(periodFlag)
	engine := reconcile.NewEngine(ledger.NewClient(runner))

	statuses, err := bills.Check(engine.Transactions(ctx, period), predicates)
	if err != nil {
		a.reportOpenTransaction(err)
		return fmt.Errorf("failed to check bills: %w", err)
	}

	if err := cli.ReportBills(a.stdout, period, statuses); err != nil {
		return fmt.Errorf("failed to report bills: %w", err)
	}

	unpaid := 0
	for _, s := range statuses {
		if !s.Paid {
			unpaid++
		}
	}

	a.recordRun(ctx, storage.Run{
		Kind:         storage.RunBills,
		Period:       period,
		Passed:       bills.AllPaid(statuses),
		FindingCount: unpaid,
		Summary:      fmt.Sprintf("%d of %d bill(s) not paid", unpaid, len(statuses)),
	})

	if unpaid > 0 {
		return common.NewExitError(1, fmt.Sprintf("%d bill(s) not paid", unpaid))
	}
	return nil
}
