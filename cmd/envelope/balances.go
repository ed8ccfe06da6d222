package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/envelope-check/internal/balance"
	"github.com/Veraticus/envelope-check/internal/cli"
	"github.com/Veraticus/envelope-check/internal/common"
	"github.com/Veraticus/envelope-check/internal/config"
	"github.com/Veraticus/envelope-check/internal/ledger"
	"github.com/Veraticus/envelope-check/internal/storage"
	"github.com/spf13/cobra"
)

func balancesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Check that cash balances equal the total of all envelopes",
		Long: `Compares the Net: row of the balance sheet for the cash accounts with the
total row of the balance report for the budget accounts. The two must be
exactly equal. Exits non-zero when they differ.`,
		Example: `  envelope balances --cash-accounts Assets:Checking,Assets:Savings --budget-accounts Budget`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBalances(cmd.Context())
		},
	}

	cmd.Flags().StringSlice("cash-accounts", nil, "accounts holding the money the envelopes divide")
	cmd.Flags().StringSlice("budget-accounts", nil, "envelope accounts")

	_ = a.viper.BindPFlag(config.KeyCashAccounts, cmd.Flags().Lookup("cash-accounts"))
	_ = a.viper.BindPFlag(config.KeyBudgetAccounts, cmd.Flags().Lookup("budget-accounts"))

	return cmd
}

func (a *app) runBalances(ctx context.Context) error {
	if len(a.cfg.CashAccounts) == 0 || len(a.cfg.BudgetAccounts) == 0 {
		return common.NewUserError(
			"pass --cash-accounts and --budget-accounts, or set balances.cash_accounts and balances.budget_accounts",
			common.ErrMissingConfig)
	}

	runner, err := a.ledgerRunner()
	if err != nil {
		return err
	}

	result, err := balance.NewReconciler(ledger.NewClient(runner)).Reconcile(ctx, a.cfg.CashAccounts, a.cfg.BudgetAccounts)
	if err != nil {
		return err
	}

	if err := cli.ReportBalances(a.stdout, result); err != nil {
		return fmt.Errorf("failed to report balances: %w", err)
	}

	a.recordRun(ctx, storage.Run{
		Kind:    storage.RunBalances,
		Passed:  result.Match,
		Summary: fmt.Sprintf("budget %s, actual %s", result.Envelope.String(), result.Net.String()),
	})

	if code := result.ExitCode(); code != 0 {
		return common.NewExitError(code, "budget and actual balances do not match")
	}
	return nil
}
