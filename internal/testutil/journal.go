package testutil

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/Veraticus/envelope-check/internal/model"
)

// Row is one posting of a fixture journal. Empty fields stay empty in the
// CSV, except Commodity which defaults to "$".
type Row struct {
	TxnIdx         string
	Date           string
	Status         string
	Description    string
	Account        string
	Amount         string
	Commodity      string
	PostingComment string
}

// JournalCSV renders rows the way `hledger print -O csv` does.
func JournalCSV(t *testing.T, rows ...Row) string {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(model.ExpectedHeaders); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}

	for _, r := range rows {
		commodity := r.Commodity
		if commodity == "" {
			commodity = "$"
		}
		record := map[string]string{
			model.FieldTxnIdx:         r.TxnIdx,
			model.FieldDate:           r.Date,
			model.FieldStatus:         r.Status,
			model.FieldDescription:    r.Description,
			model.FieldAccount:        r.Account,
			model.FieldAmount:         r.Amount,
			model.FieldCommodity:      commodity,
			model.FieldPostingComment: r.PostingComment,
		}
		line := make([]string, len(model.ExpectedHeaders))
		for i, field := range model.ExpectedHeaders {
			line[i] = record[field]
		}
		if err := w.Write(line); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("failed to flush journal: %v", err)
	}
	return buf.String()
}

// Envelope returns the budget and expense postings of a balanced envelope
// transaction.
func Envelope(txnidx, date, description, category, amount string) []Row {
	return []Row{
		{TxnIdx: txnidx, Date: date, Status: "*", Description: description, Account: "Assets:Checking", Amount: "$-" + amount},
		{TxnIdx: txnidx, Date: date, Status: "*", Description: description, Account: "Expenses:" + category, Amount: "$" + amount},
		{TxnIdx: txnidx, Date: date, Status: "*", Description: description, Account: "(Budget:" + category + ")", Amount: "$-" + amount},
	}
}
