package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/envelope-check/internal/cli"
	"github.com/Veraticus/envelope-check/internal/common"
	"github.com/Veraticus/envelope-check/internal/storage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func historyCmd(a *app) *cobra.Command {
	var (
		limit int
		kind  string
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past check runs, or show one of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.showRun(cmd.Context(), args[0])
			}
			return a.listRuns(cmd.Context(), storage.RunFilter{Kind: storage.RunKind(kind), Limit: limit})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", storage.DefaultListLimit, "number of runs to list")
	cmd.Flags().StringVar(&kind, "kind", "", "only list runs of this kind (transactions, balances, bills)")

	return cmd
}

func (a *app) openHistory(ctx context.Context) (*storage.SQLiteStorage, error) {
	if !a.cfg.HistoryEnabled {
		return nil, common.NewUserError("run history is disabled; drop --no-history or set history.enabled",
			common.ErrInvalidConfig)
	}

	store, err := storage.Open(ctx, a.cfg.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return store, nil
}

func (a *app) listRuns(ctx context.Context, filter storage.RunFilter) (err error) {
	store, err := a.openHistory(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close run history: %w", closeErr)
		}
	}()

	runs, err := store.ListRuns(ctx, filter)
	if err != nil {
		return err
	}
	return cli.ReportHistory(a.stdout, runs)
}

func (a *app) showRun(ctx context.Context, rawID string) (err error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("%q is not a run ID", rawID), err)
	}

	store, err := a.openHistory(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close run history: %w", closeErr)
		}
	}()

	run, err := store.GetRun(ctx, id)
	if err != nil {
		return err
	}
	return cli.ReportRun(a.stdout, run)
}
