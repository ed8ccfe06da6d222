package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/envelope-check/internal/cli"
	"github.com/Veraticus/envelope-check/internal/ledger"
	"github.com/Veraticus/envelope-check/internal/reconcile"
	"github.com/spf13/cobra"
)

func printCmd(a *app) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the transactions of a period as they are checked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPrint(cmd.Context(), period)
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", `period to print (default: current month, "all" for every date)`)

	return cmd
}

func (a *app) runPrint(ctx context.Context, periodFlag string) error {
	runner, err := a.ledgerRunner()
	if err != nil {
		return err
	}

	engine := reconcile.NewEngine(ledger.NewClient(runner))
	for txn, err := range engine.Transactions(ctx, a.cfg.ResolvePeriod(periodFlag)) {
		if err != nil {
			a.reportOpenTransaction(err)
			return fmt.Errorf("failed to read transactions: %w", err)
		}
		if err := cli.PrintTransaction(a.stdout, txn); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(a.stdout); err != nil {
			return err
		}
	}
	return nil
}
