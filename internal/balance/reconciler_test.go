package balance

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/envelope-check/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bsReport(net string) string {
	return `"Balance Sheet 2024-03-31","Balance"
"Assets",""
"Assets:Checking","` + net + `"
"Total:","` + net + `"
"Liabilities",""
"Total:","0"
"Net:","` + net + `"
`
}

func balReport(total string) string {
	return `"account","balance"
"Budget:Groceries","$200.00"
"total","` + total + `"
`
}

func newReconciler(net, total string) (*Reconciler, *ledger.MockRunner) {
	runner := ledger.NewMockRunner()
	runner.Outputs["bs"] = bsReport(net)
	runner.Outputs["bal"] = balReport(total)
	return NewReconciler(ledger.NewClient(runner)), runner
}

func TestReconcile_Match(t *testing.T) {
	r, runner := newReconciler("$1,234.56", "$1,234.56")

	result, err := r.Reconcile(context.Background(),
		[]string{"Assets:Checking"}, []string{"Budget"})
	require.NoError(t, err)

	assert.True(t, result.Match)
	assert.Equal(t, 0, result.ExitCode())
	assert.Equal(t, "1234.56", result.Net.String())

	require.Len(t, runner.Calls, 2)
	assert.Equal(t, ledger.ReportArgs("bs", []string{"Assets:Checking"}), runner.Calls[0])
	assert.Equal(t, ledger.ReportArgs("bal", []string{"Budget"}), runner.Calls[1])
}

func TestReconcile_Mismatch(t *testing.T) {
	r, _ := newReconciler("1234.56", "1234.57")

	result, err := r.Reconcile(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.False(t, result.Match)
	assert.Equal(t, 1, result.ExitCode())
	assert.Equal(t, "1234.56", result.Net.String())
	assert.Equal(t, "1234.57", result.Envelope.String())
}

func TestReconcile_ScaleDoesNotMatter(t *testing.T) {
	r, _ := newReconciler("$100", "$100.00")

	result, err := r.Reconcile(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.True(t, result.Match)
}

func TestReconcile_ReportFailure(t *testing.T) {
	runner := ledger.NewMockRunner()
	runner.Errors["bs"] = &ledger.ProcessError{Args: []string{"hledger", "bs"}, ExitCode: 1, Stderr: "no such account"}
	r := NewReconciler(ledger.NewClient(runner))

	_, err := r.Reconcile(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get net cash balance")
	assert.Contains(t, err.Error(), "no such account")
}

func TestExtractTotal(t *testing.T) {
	tests := []struct {
		name    string
		report  string
		label   string
		want    string
		wantErr error
	}{
		{name: "net row", report: bsReport("$-12.50"), label: NetLabel, want: "-12.5"},
		{name: "total row", report: balReport("$1,000.00"), label: TotalLabel, want: "1000"},
		{name: "first matching row wins", report: "total,1\ntotal,2\n", label: TotalLabel, want: "1"},
		{name: "missing row", report: balReport("1"), label: NetLabel, wantErr: ErrTotalNotFound},
		{name: "empty report", report: "", label: TotalLabel, wantErr: ErrTotalNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTotal([]byte(tt.report), tt.label)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestExtractTotal_InvalidAmount(t *testing.T) {
	_, err := ExtractTotal([]byte("total,n/a\n"), TotalLabel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid total amount")
}
