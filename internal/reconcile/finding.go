// Package reconcile groups streamed postings into transactions and checks
// that budget envelope postings are offset by matching expense postings.
package reconcile

import "fmt"

// FindingKind classifies a reconciliation finding.
type FindingKind string

// Finding kinds.
const (
	FindingMissingParen      FindingKind = "missing-paren"
	FindingAmountMismatch    FindingKind = "amount-mismatch"
	FindingUnparseableAmount FindingKind = "unparseable-amount"
	FindingUnmatchedBudget   FindingKind = "unmatched-budget"
	FindingUnmatchedExpense  FindingKind = "unmatched-expense"
)

// Finding is a non-fatal problem found while validating one transaction.
type Finding struct {
	Kind    FindingKind
	Account string
	Message string
}

func (f Finding) String() string {
	return f.Message
}

func missingParen(account string) Finding {
	return Finding{
		Kind:    FindingMissingParen,
		Account: account,
		Message: fmt.Sprintf("Missing ')' for account '%s'", account),
	}
}

func amountMismatch(expenseKey string) Finding {
	return Finding{
		Kind:    FindingAmountMismatch,
		Account: expenseKey,
		Message: fmt.Sprintf("Mismatched budget amount for %s", expenseKey),
	}
}

func unparseableAmount(account, amount string) Finding {
	return Finding{
		Kind:    FindingUnparseableAmount,
		Account: account,
		Message: fmt.Sprintf("Unparseable amount '%s' for account '%s'", amount, account),
	}
}

func unmatchedBudget(budgetKey, amount string) Finding {
	return Finding{
		Kind:    FindingUnmatchedBudget,
		Account: budgetKey,
		Message: fmt.Sprintf("Unmatched budget envelope %s (%s)", budgetKey, amount),
	}
}

func unmatchedExpense(expenseKey, amount string) Finding {
	return Finding{
		Kind:    FindingUnmatchedExpense,
		Account: expenseKey,
		Message: fmt.Sprintf("Unmatched expense %s (%s)", expenseKey, amount),
	}
}
