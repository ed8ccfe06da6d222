// Package main runs the findings browser over generated transactions.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/Veraticus/envelope-check/internal/model"
	"github.com/Veraticus/envelope-check/internal/reconcile"
	"github.com/Veraticus/envelope-check/internal/tui"
	"github.com/shopspring/decimal"
)

var payees = []struct {
	description string
	category    string
}{
	{"Whole Foods Market", "Groceries"},
	{"Shell Oil", "Auto:Fuel"},
	{"Netflix", "Subscriptions"},
	{"Starbucks", "Dining"},
	{"CVS Pharmacy", "Health"},
	{"Home Depot", "Household"},
}

// demoResults builds count transactions, every third of which is broken in
// one of the ways the matcher reports.
func demoResults(count int) []reconcile.Result {
	results := make([]reconcile.Result, 0, count)
	for i := range count {
		payee := payees[i%len(payees)]
		id := strconv.Itoa(i + 1)
		amount := decimal.NewFromInt(int64(i*7%90 + 5)).Add(decimal.New(int64(i%100), -2))
		budget := "$-" + amount.StringFixed(2)
		budgetAccount := "(Budget:" + payee.category + ")"

		switch i % 9 {
		case 2:
			budget = "$-" + amount.Add(decimal.NewFromInt(1)).StringFixed(2)
		case 5:
			budgetAccount = "(Budget:" + payee.category
		case 8:
			budget = "$-??"
		}

		posting := func(account, amt string) model.Posting {
			return model.Posting{
				TxnIdx:      id,
				Date:        fmt.Sprintf("2024-03-%02d", i%28+1),
				Status:      "*",
				Description: payee.description,
				Account:     account,
				Amount:      amt,
				Commodity:   "$",
			}
		}

		txn := reconcile.Transaction{
			ID: id,
			Postings: []model.Posting{
				posting("Assets:Checking", "$-"+amount.StringFixed(2)),
				posting("Expenses:"+payee.category, "$"+amount.StringFixed(2)),
				posting(budgetAccount, budget),
			},
		}
		results = append(results, reconcile.Result{Transaction: txn, Findings: reconcile.Findings(txn)})
	}
	return results
}

func main() {
	if err := tui.Browse(context.Background(), "2024-03", demoResults(100)); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
