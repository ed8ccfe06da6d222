// Package config resolves the tool's settings from flags, environment and files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/envelope-check/internal/common"
	"github.com/Veraticus/envelope-check/internal/ledger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix scopes the environment variables viper reads.
	EnvPrefix = "ENVELOPE"

	// AllPeriods disables the period restriction on ledger queries.
	AllPeriods = "all"

	// DefaultBillFileName is looked up next to the ledger file.
	DefaultBillFileName = "bills.yaml"

	periodLayout = "2006-01"
)

// Viper keys.
const (
	KeyLedgerBinary   = "ledger.binary"
	KeyLedgerFile     = "ledger.file"
	KeyPeriod         = "period"
	KeyBillFile       = "bills.file"
	KeyCashAccounts   = "balances.cash_accounts"
	KeyBudgetAccounts = "balances.budget_accounts"
	KeyStrict         = "check.strict"
	KeyHistoryEnabled = "history.enabled"
	KeyHistoryOff     = "history.disabled"
	KeyHistoryPath    = "history.path"
	KeyProgressOff    = "progress.disabled"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
)

// ErrBillFileNotFound is returned when no bill file can be located.
var ErrBillFileNotFound = errors.New("bill file not found")

// Config holds everything a command needs, resolved once at startup.
type Config struct {
	LedgerPath     string
	LedgerFile     string
	Period         string
	BillFile       string
	HistoryPath    string
	CashAccounts   []string
	BudgetAccounts []string
	Strict         bool
	HistoryEnabled bool
	NoProgress     bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLedgerBinary, ledger.DefaultBinary)
	v.SetDefault(KeyHistoryEnabled, true)
	v.SetDefault(KeyHistoryPath, "~/.local/share/envelope/history.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Configure points v at the config file and environment. A missing config
// file is not an error.
func Configure(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".config", "envelope"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return nil
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from v. It follows this precedence:
// 1. Viper (flags, ENVELOPE_ env vars, config file)
// 2. Ledger environment variables (LEDGER_FILE)
// 3. Default values
func Load(v *viper.Viper, now time.Time) (*Config, error) {
	cfg := &Config{
		LedgerPath:     v.GetString(KeyLedgerBinary),
		LedgerFile:     ExpandPath(v.GetString(KeyLedgerFile)),
		Period:         v.GetString(KeyPeriod),
		BillFile:       ExpandPath(v.GetString(KeyBillFile)),
		HistoryPath:    ExpandPath(v.GetString(KeyHistoryPath)),
		CashAccounts:   v.GetStringSlice(KeyCashAccounts),
		BudgetAccounts: v.GetStringSlice(KeyBudgetAccounts),
		Strict:         v.GetBool(KeyStrict),
		HistoryEnabled: v.GetBool(KeyHistoryEnabled) && !v.GetBool(KeyHistoryOff),
		NoProgress:     v.GetBool(KeyProgressOff),
	}

	if cfg.LedgerPath == "" {
		cfg.LedgerPath = ledger.DefaultBinary
	}
	if cfg.LedgerFile == "" {
		cfg.LedgerFile = ExpandPath(os.Getenv("LEDGER_FILE"))
	}
	if cfg.Period == "" {
		cfg.Period = DefaultPeriod(now)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the resolved values are usable.
func (c *Config) Validate() error {
	if c.HistoryEnabled && c.HistoryPath == "" {
		return common.NewUserError("set history.path or pass --no-history",
			fmt.Errorf("%w: history path is empty", common.ErrMissingConfig))
	}
	if strings.TrimSpace(c.Period) == "" {
		return fmt.Errorf("%w: period is empty", common.ErrInvalidConfig)
	}
	return nil
}

// ResolvePeriod returns the period to query, preferring override when set.
// AllPeriods maps to the empty string, which means no restriction.
func (c *Config) ResolvePeriod(override string) string {
	period := c.Period
	if override != "" {
		period = override
	}
	if strings.EqualFold(period, AllPeriods) {
		return ""
	}
	return period
}

// DefaultPeriod is the calendar month containing now, as YYYY-MM.
func DefaultPeriod(now time.Time) string {
	return now.Format(periodLayout)
}

// ResolveBillFile locates the bill rule file. It checks, in order, the
// explicit path, BILL_FILE_V2, BILL_FILE, and finally bills.yaml in the
// directory of the ledger file.
func ResolveBillFile(explicit, ledgerFile string) (string, error) {
	for _, candidate := range []struct {
		source string
		path   string
	}{
		{source: "--bill-file", path: explicit},
		{source: "BILL_FILE_V2", path: os.Getenv("BILL_FILE_V2")},
		{source: "BILL_FILE", path: os.Getenv("BILL_FILE")},
	} {
		if candidate.path == "" {
			continue
		}
		path := ExpandPath(candidate.path)
		if !isYAML(path) {
			return "", common.NewUserError(
				fmt.Sprintf("%s is set, but the file has an invalid extension (must be .yaml or .yml)", candidate.source),
				fmt.Errorf("%w: %s", common.ErrInvalidConfig, path))
		}
		return path, nil
	}

	if ledgerFile == "" {
		return "", common.NewUserError(
			"set BILL_FILE or BILL_FILE_V2, pass --bill-file, or set LEDGER_FILE so bills.yaml can be found next to it",
			ErrBillFileNotFound)
	}

	path := filepath.Join(filepath.Dir(ExpandPath(ledgerFile)), DefaultBillFileName)
	if _, err := os.Stat(path); err != nil {
		return "", common.NewUserError(
			fmt.Sprintf("no bill file given and %s does not exist", path),
			fmt.Errorf("%w: %w", ErrBillFileNotFound, err))
	}
	return path, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// ExpandPath resolves a leading ~ to the home directory and then expands
// $VAR references, so ledger and bill paths can be written the way hledger
// users write LEDGER_FILE. A home directory that cannot be found leaves the
// ~ in place.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return path
	case path == "~", strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = home + strings.TrimPrefix(path, "~")
		}
	}
	return os.ExpandEnv(filepath.Clean(path))
}
