package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/envelope-check/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march = time.Date(2024, time.March, 17, 9, 0, 0, 0, time.UTC)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LEDGER_FILE", "/data/main.journal")

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v, march)
	require.NoError(t, err)

	assert.Equal(t, "hledger", cfg.LedgerPath)
	assert.Equal(t, "/data/main.journal", cfg.LedgerFile)
	assert.Equal(t, "2024-03", cfg.Period)
	assert.True(t, cfg.HistoryEnabled)
	assert.NotEmpty(t, cfg.HistoryPath)
	assert.False(t, cfg.Strict)
}

func TestLoad_ViperOverridesEnvironment(t *testing.T) {
	t.Setenv("LEDGER_FILE", "/data/main.journal")

	v := viper.New()
	SetDefaults(v)
	v.Set(KeyLedgerFile, "/other/ledger.journal")
	v.Set(KeyPeriod, "2023")
	v.Set(KeyStrict, true)
	v.Set(KeyHistoryOff, true)
	v.Set(KeyCashAccounts, []string{"Assets:Checking", "Assets:Savings"})

	cfg, err := Load(v, march)
	require.NoError(t, err)

	assert.Equal(t, "/other/ledger.journal", cfg.LedgerFile)
	assert.Equal(t, "2023", cfg.Period)
	assert.True(t, cfg.Strict)
	assert.False(t, cfg.HistoryEnabled)
	assert.Equal(t, []string{"Assets:Checking", "Assets:Savings"}, cfg.CashAccounts)
}

func TestLoad_MissingHistoryPath(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set(KeyHistoryPath, "")

	_, err := Load(v, march)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestConfigure_ReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ledger:\n  file: /from/file.journal\ncheck:\n  strict: true\n"), 0o600))
	t.Setenv("ENVELOPE_PERIOD", "2022-12")

	v := viper.New()
	require.NoError(t, Configure(v, path))

	cfg, err := Load(v, march)
	require.NoError(t, err)
	assert.Equal(t, "/from/file.journal", cfg.LedgerFile)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "2022-12", cfg.Period)
}

func TestConfigure_BadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ledger: [unclosed"), 0o600))

	err := Configure(viper.New(), path)
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ENVELOPE_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("ENVELOPE_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("ENVELOPE_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("ENVELOPE_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestResolvePeriod(t *testing.T) {
	cfg := &Config{Period: "2024-03"}

	tests := []struct {
		name     string
		override string
		want     string
	}{
		{name: "configured", override: "", want: "2024-03"},
		{name: "override", override: "2024-01", want: "2024-01"},
		{name: "all", override: "all", want: ""},
		{name: "all uppercase", override: "ALL", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.ResolvePeriod(tt.override))
		})
	}
}

func TestResolveBillFile(t *testing.T) {
	dir := t.TempDir()
	ledgerFile := filepath.Join(dir, "main.journal")
	probed := filepath.Join(dir, DefaultBillFileName)

	tests := []struct {
		env        map[string]string
		name       string
		explicit   string
		ledgerFile string
		want       string
		createBill bool
		wantErr    bool
	}{
		{
			name:     "explicit flag wins",
			explicit: "/etc/bills.yml",
			env:      map[string]string{"BILL_FILE_V2": "/v2/bills.yaml"},
			want:     "/etc/bills.yml",
		},
		{
			name: "v2 env before v1",
			env:  map[string]string{"BILL_FILE_V2": "/v2/bills.yaml", "BILL_FILE": "/v1/bills.yaml"},
			want: "/v2/bills.yaml",
		},
		{
			name: "v1 env",
			env:  map[string]string{"BILL_FILE": "/v1/bills.yaml"},
			want: "/v1/bills.yaml",
		},
		{
			name:    "bad extension",
			env:     map[string]string{"BILL_FILE": "/v1/bills.py"},
			wantErr: true,
		},
		{
			name:       "probe next to ledger",
			ledgerFile: ledgerFile,
			createBill: true,
			want:       probed,
		},
		{
			name:       "probe finds nothing",
			ledgerFile: ledgerFile,
			wantErr:    true,
		},
		{
			name:    "nothing configured",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BILL_FILE_V2", "")
			t.Setenv("BILL_FILE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.createBill {
				require.NoError(t, os.WriteFile(probed, []byte("bills: []\n"), 0o600))
				t.Cleanup(func() { _ = os.Remove(probed) })
			}

			got, err := ResolveBillFile(tt.explicit, tt.ledgerFile)
			if tt.wantErr {
				require.Error(t, err)
				var userErr *common.UserError
				assert.ErrorAs(t, err, &userErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("ENVELOPE_TEST_DIR", "/srv/ledger")

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "~", want: home},
		{input: "~/ledger/main.journal", want: filepath.Join(home, "ledger/main.journal")},
		{input: "$ENVELOPE_TEST_DIR/main.journal", want: "/srv/ledger/main.journal"},
		{input: "/abs/path", want: "/abs/path"},
		{input: "./ledger/../main.journal", want: "main.journal"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}
