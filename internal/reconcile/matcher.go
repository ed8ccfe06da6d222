package reconcile

import (
	"iter"
	"strings"
)

// Account naming convention for envelope budgeting.
const (
	BudgetPrefix       = "(Budget:"
	BudgetKeyPrefix    = "Budget:"
	ExpensePrefix      = "Expenses:"
	budgetClosingParen = ")"
)

// Option configures validation.
type Option func(*validateOptions)

type validateOptions struct {
	reportUnmatched bool
}

// WithUnmatched makes validation report budget and expense postings left
// without a counterpart once the whole transaction has been seen.
func WithUnmatched(enabled bool) Option {
	return func(o *validateOptions) {
		o.reportUnmatched = enabled
	}
}

// outstanding is an envelope or expense posting waiting for its counterpart.
type outstanding struct {
	amount string
}

// pairing holds the unmatched postings of one transaction. A key is never
// present in both maps: a match removes the counterpart instead of storing.
type pairing struct {
	expenses     map[string]outstanding
	budgets      map[string]outstanding
	expenseOrder []string
	budgetOrder  []string
}

func newPairing() *pairing {
	return &pairing{
		expenses: make(map[string]outstanding),
		budgets:  make(map[string]outstanding),
	}
}

func (p *pairing) storeBudget(key, amount string) {
	if _, exists := p.budgets[key]; !exists {
		p.budgetOrder = append(p.budgetOrder, key)
	}
	p.budgets[key] = outstanding{amount: amount}
}

func (p *pairing) storeExpense(key, amount string) {
	if _, exists := p.expenses[key]; !exists {
		p.expenseOrder = append(p.expenseOrder, key)
	}
	p.expenses[key] = outstanding{amount: amount}
}

// Validate checks that each (Budget:X) posting in txn is offset by an
// Expenses:X posting of negated amount. Postings are examined in order and
// findings are produced lazily; an empty sequence means the transaction
// reconciles.
func Validate(txn Transaction, opts ...Option) iter.Seq[Finding] {
	var o validateOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(Finding) bool) {
		p := newPairing()

		for _, posting := range txn.Postings {
			account := posting.Account
			amount := posting.Amount

			switch {
			case strings.HasPrefix(account, BudgetPrefix):
				if !strings.HasSuffix(account, budgetClosingParen) {
					if !yield(missingParen(account)) {
						return
					}
					account += budgetClosingParen
				}
				if _, err := ParseAmount(amount); err != nil {
					if !yield(unparseableAmount(posting.Account, amount)) {
						return
					}
				}

				suffix := strings.TrimSuffix(strings.TrimPrefix(account, BudgetPrefix), budgetClosingParen)
				expenseKey := ExpensePrefix + suffix

				if pending, ok := p.expenses[expenseKey]; ok {
					delete(p.expenses, expenseKey)
					if equal, _ := EqualUnderNegation(pending.amount, amount); !equal {
						if !yield(amountMismatch(expenseKey)) {
							return
						}
					}
					continue
				}
				p.storeBudget(BudgetKeyPrefix+suffix, amount)

			case strings.HasPrefix(account, ExpensePrefix):
				if _, err := ParseAmount(amount); err != nil {
					if !yield(unparseableAmount(account, amount)) {
						return
					}
				}

				budgetKey := BudgetKeyPrefix + strings.TrimPrefix(account, ExpensePrefix)

				if pending, ok := p.budgets[budgetKey]; ok {
					delete(p.budgets, budgetKey)
					if equal, _ := EqualUnderNegation(pending.amount, amount); !equal {
						if !yield(amountMismatch(account)) {
							return
						}
					}
					continue
				}
				p.storeExpense(account, amount)
			}
		}

		if !o.reportUnmatched {
			return
		}

		for _, key := range p.budgetOrder {
			if pending, ok := p.budgets[key]; ok {
				delete(p.budgets, key)
				if !yield(unmatchedBudget(key, pending.amount)) {
					return
				}
			}
		}
		for _, key := range p.expenseOrder {
			if pending, ok := p.expenses[key]; ok {
				delete(p.expenses, key)
				if !yield(unmatchedExpense(key, pending.amount)) {
					return
				}
			}
		}
	}
}

// Findings runs Validate and collects the result.
func Findings(txn Transaction, opts ...Option) []Finding {
	var findings []Finding
	for f := range Validate(txn, opts...) {
		findings = append(findings, f)
	}
	return findings
}
