package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/envelope-check/internal/cli"
	"github.com/Veraticus/envelope-check/internal/common"
	"github.com/Veraticus/envelope-check/internal/config"
	"github.com/Veraticus/envelope-check/internal/ledger"
	"github.com/Veraticus/envelope-check/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exitInterrupted follows the shell convention for SIGINT.
const exitInterrupted = 130

var version = "dev"

// app carries what every command shares once configuration is resolved.
type app struct {
	viper   *viper.Viper
	cfg     *config.Config
	runner  ledger.Runner
	stdout  io.Writer
	stderr  io.Writer
	now     func() time.Time
	cfgFile string
	envFile string
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		viper:  viper.New(),
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "envelope",
		Short: "✉️  Envelope budget checks for hledger journals",
		Long: `envelope-check: validates that every budget envelope posting in an hledger
journal is offset by a matching expense, that cash and envelope balances agree,
and that recurring bills were paid.

The ledger is only ever read.`,
		PersistentPreRunE: a.initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/envelope/config.yaml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.StringP("ledger-file", "f", "", "hledger journal (default: $LEDGER_FILE)")
	flags.String("hledger", ledger.DefaultBinary, "hledger executable")
	flags.Bool("no-history", false, "do not record this run in the history database")

	// Bind flags to viper
	_ = a.viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.viper.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
	_ = a.viper.BindPFlag(config.KeyLedgerFile, flags.Lookup("ledger-file"))
	_ = a.viper.BindPFlag(config.KeyLedgerBinary, flags.Lookup("hledger"))
	_ = a.viper.BindPFlag(config.KeyHistoryOff, flags.Lookup("no-history"))

	// Add commands
	rootCmd.AddCommand(transactionsCmd(a))
	rootCmd.AddCommand(balancesCmd(a))
	rootCmd.AddCommand(billsCmd(a))
	rootCmd.AddCommand(printCmd(a))
	rootCmd.AddCommand(historyCmd(a))
	rootCmd.AddCommand(versionCmd(a))

	return rootCmd
}

func main() {
	interrupts := cli.NewInterruptHandler(os.Stderr)
	ctx := interrupts.HandleInterrupts(context.Background())

	a := newApp(os.Stdout, os.Stderr)
	err := newRootCmd(a).ExecuteContext(ctx)
	interrupts.Stop()

	if interrupts.WasInterrupted() {
		os.Exit(exitInterrupted)
	}
	if err != nil {
		var exitErr *common.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		}
		os.Exit(common.ExitCode(err))
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	if err := config.Configure(a.viper, a.cfgFile); err != nil {
		return err
	}

	if err := common.SetupLogger(a.stderr, a.viper.GetString(config.KeyLogLevel), a.viper.GetString(config.KeyLogFormat)); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	cfg, err := config.Load(a.viper, a.now())
	if err != nil {
		return err
	}
	a.cfg = cfg

	slog.Debug("configuration loaded",
		"ledger_file", cfg.LedgerFile,
		"period", cfg.Period,
		"history", cfg.HistoryEnabled)

	return nil
}

// ledgerRunner returns the runner commands query hledger through. It is
// created on first use so that commands which never touch the ledger work
// without hledger installed.
func (a *app) ledgerRunner() (ledger.Runner, error) {
	if a.runner != nil {
		return a.runner, nil
	}

	runner, err := ledger.NewExecRunner(a.cfg.LedgerPath, a.cfg.LedgerFile)
	if err != nil {
		return nil, common.NewUserError("install hledger or point --hledger at it", err)
	}
	a.runner = runner
	return runner, nil
}

// recordRun stores run in the history database. Failures are logged and
// never change the outcome of the check.
func (a *app) recordRun(ctx context.Context, run storage.Run) {
	if !a.cfg.HistoryEnabled {
		return
	}
	run.LedgerFile = a.cfg.LedgerFile

	store, err := storage.Open(ctx, a.cfg.HistoryPath)
	if err != nil {
		slog.Warn("Failed to open run history", "path", a.cfg.HistoryPath, "error", err)
		return
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close run history", "error", closeErr)
		}
	}()

	if err := store.SaveRun(ctx, &run); err != nil {
		slog.Warn("Failed to record run", "kind", run.Kind, "error", err)
		return
	}
	slog.Debug("recorded run", "id", run.ID, "kind", run.Kind, "passed", run.Passed)
}

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.stdout, "envelope version %s\n", version)
			return err
		},
	}
}
