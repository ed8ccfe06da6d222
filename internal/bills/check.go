package bills

import (
	"iter"
	"log/slog"

	"github.com/Veraticus/envelope-check/internal/reconcile"
)

// Status is the outcome of one bill for a period.
type Status struct {
	Name   string
	TxnIdx string
	Paid   bool
}

// Check runs every predicate over the transactions and reports which ones
// matched at least once. A predicate is no longer evaluated once it has
// matched. Statuses follow the order of predicates.
func Check(txns iter.Seq2[reconcile.Transaction, error], predicates []Predicate) ([]Status, error) {
	statuses := make([]Status, len(predicates))
	for i, p := range predicates {
		statuses[i] = Status{Name: p.Name()}
	}

	remaining := len(predicates)
	for txn, err := range txns {
		if err != nil {
			return nil, err
		}

		for i, p := range predicates {
			if statuses[i].Paid {
				continue
			}
			if p.Match(txn) {
				statuses[i].Paid = true
				statuses[i].TxnIdx = txn.ID
				remaining--
				slog.Debug("bill matched", "bill", p.Name(), "txnidx", txn.ID)
			}
		}

		if remaining == 0 {
			break
		}
	}

	return statuses, nil
}

// AllPaid reports whether every bill was paid.
func AllPaid(statuses []Status) bool {
	for _, s := range statuses {
		if !s.Paid {
			return false
		}
	}
	return true
}
