package bills

import (
	"errors"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/envelope-check/internal/model"
	"github.com/Veraticus/envelope-check/internal/reconcile"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBills = `
bills:
  - name: Rent
    account: Expenses:Rent
    amount_condition: eq
    amount_value: "1200.00"
  - name: Internet
    description: "(?i)comcast"
    regex: true
  - name: Electric
    account: "^Expenses:Utilities:Electric"
    regex: true
    amount_condition: range
    amount_min: "50"
    amount_max: "200"
`

func txnOf(id, description string, postings ...[2]string) reconcile.Transaction {
	tx := reconcile.Transaction{ID: id}
	for _, p := range postings {
		tx.Postings = append(tx.Postings, model.Posting{
			TxnIdx:      id,
			Description: description,
			Account:     p[0],
			Amount:      p[1],
			Commodity:   "$",
		})
	}
	return tx
}

func stream(txns ...reconcile.Transaction) iter.Seq2[reconcile.Transaction, error] {
	return func(yield func(reconcile.Transaction, error) bool) {
		for _, tx := range txns {
			if !yield(tx, nil) {
				return
			}
		}
	}
}

func TestLoad(t *testing.T) {
	preds, err := Load(strings.NewReader(sampleBills))
	require.NoError(t, err)
	require.Len(t, preds, 3)

	assert.Equal(t, "Rent", preds[0].Name())
	assert.Equal(t, "Internet", preds[1].Name())
	assert.Equal(t, "Electric", preds[2].Name())

	rent := preds[0].(*Rule)
	require.NotNil(t, rent.AmountValue)
	assert.Equal(t, "1200", rent.AmountValue.String())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "empty file", input: "", errMsg: "no bills defined"},
		{name: "missing name", input: "bills:\n  - account: Expenses:Rent\n", errMsg: "bill name is required"},
		{name: "no pattern", input: "bills:\n  - name: Rent\n", errMsg: "needs an account or description pattern"},
		{name: "duplicate", input: "bills:\n  - name: A\n    account: X\n  - name: A\n    account: Y\n", errMsg: "duplicate bill name"},
		{name: "unknown condition", input: "bills:\n  - name: A\n    account: X\n    amount_condition: about\n", errMsg: "unknown amount condition"},
		{name: "missing value", input: "bills:\n  - name: A\n    account: X\n    amount_condition: gt\n", errMsg: "requires amount_value"},
		{name: "inverted range", input: "bills:\n  - name: A\n    account: X\n    amount_condition: range\n    amount_min: \"10\"\n    amount_max: \"5\"\n", errMsg: "amount_min must be less than or equal"},
		{name: "bad regex", input: "bills:\n  - name: A\n    account: \"(\"\n    regex: true\n", errMsg: "invalid account pattern"},
		{name: "bad decimal", input: "bills:\n  - name: A\n    account: X\n    amount_condition: eq\n    amount_value: lots\n", errMsg: "invalid amount_value"},
		{name: "unknown field", input: "bills:\n  - name: A\n    acount: X\n", errMsg: "failed to parse bill file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bills.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleBills), 0o600))

	preds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, preds, 3)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRule_Match(t *testing.T) {
	preds, err := Load(strings.NewReader(sampleBills))
	require.NoError(t, err)
	rent, internet, electric := preds[0], preds[1], preds[2]

	rentTxn := txnOf("1", "Landlord", [2]string{"Assets:Checking", "$-1200.00"}, [2]string{"expenses:rent", "$1,200.00"})
	assert.True(t, rent.Match(rentTxn), "account match is case-insensitive")
	assert.False(t, rent.Match(txnOf("2", "Landlord", [2]string{"Expenses:Rent", "$1100.00"})))

	assert.True(t, internet.Match(txnOf("3", "COMCAST CABLE", [2]string{"Expenses:Internet", "$80"})))
	assert.False(t, internet.Match(txnOf("4", "Verizon", [2]string{"Expenses:Internet", "$80"})))

	assert.True(t, electric.Match(txnOf("5", "PG&E", [2]string{"Expenses:Utilities:Electric", "$120.00"})))
	assert.False(t, electric.Match(txnOf("6", "PG&E", [2]string{"Expenses:Utilities:Electric", "$250.00"})))
	assert.False(t, electric.Match(reconcile.Transaction{ID: "7"}))
}

func TestRule_MatchCommodityAndConditions(t *testing.T) {
	value := mustDecimal(t, "100")
	tests := []struct {
		condition AmountCondition
		amount    string
		want      bool
	}{
		{AmountLessThan, "$99.99", true},
		{AmountLessThan, "$100", false},
		{AmountLessEqual, "$100.00", true},
		{AmountEqual, "$100", true},
		{AmountGreaterEqual, "$100", true},
		{AmountGreaterThan, "$100.01", true},
		{AmountGreaterThan, "n/a", false},
		{AmountAny, "n/a", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.condition)+" "+tt.amount, func(t *testing.T) {
			rule := &Rule{RuleName: "x", Account: "Expenses:X", AmountCondition: tt.condition, AmountValue: &value}
			require.NoError(t, rule.Validate())
			assert.Equal(t, tt.want, rule.Match(txnOf("1", "d", [2]string{"Expenses:X", tt.amount})))
		})
	}

	rule := &Rule{RuleName: "eur", Account: "Expenses:X", Commodity: "EUR"}
	require.NoError(t, rule.Validate())
	assert.False(t, rule.Match(txnOf("1", "d", [2]string{"Expenses:X", "$5"})))
}

func TestCheck(t *testing.T) {
	preds, err := Load(strings.NewReader(sampleBills))
	require.NoError(t, err)

	txns := stream(
		txnOf("1", "Landlord", [2]string{"Expenses:Rent", "$1200.00"}),
		txnOf("2", "Comcast", [2]string{"Expenses:Internet", "$80"}),
		txnOf("3", "Landlord again", [2]string{"Expenses:Rent", "$1200.00"}),
	)

	statuses, err := Check(txns, preds)
	require.NoError(t, err)

	assert.Equal(t, []Status{
		{Name: "Rent", Paid: true, TxnIdx: "1"},
		{Name: "Internet", Paid: true, TxnIdx: "2"},
		{Name: "Electric", Paid: false},
	}, statuses)
	assert.False(t, AllPaid(statuses))
}

func TestCheck_StopsWhenAllPaid(t *testing.T) {
	preds, err := Load(strings.NewReader("bills:\n  - name: Rent\n    account: Expenses:Rent\n"))
	require.NoError(t, err)

	pulled := 0
	txns := func(yield func(reconcile.Transaction, error) bool) {
		for _, id := range []string{"1", "2", "3"} {
			pulled++
			if !yield(txnOf(id, "x", [2]string{"Expenses:Rent", "$1"}), nil) {
				return
			}
		}
	}

	statuses, err := Check(txns, preds)
	require.NoError(t, err)
	assert.True(t, AllPaid(statuses))
	assert.Equal(t, 1, pulled)
}

func TestCheck_StreamError(t *testing.T) {
	preds, err := Load(strings.NewReader(sampleBills))
	require.NoError(t, err)

	boom := errors.New("boom")
	txns := func(yield func(reconcile.Transaction, error) bool) {
		yield(reconcile.Transaction{}, boom)
	}

	_, err = Check(txns, preds)
	assert.ErrorIs(t, err, boom)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
