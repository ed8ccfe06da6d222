package reconcile

import (
	"fmt"
	"iter"

	"github.com/Veraticus/envelope-check/internal/model"
)

// Transaction is the ordered postings sharing one transaction id.
type Transaction struct {
	ID       string
	Postings []model.Posting
}

// StreamError wraps a failure of the posting stream with the transaction
// that was open when it happened, so its postings can be shown.
type StreamError struct {
	Err     error
	Partial Transaction
}

func (e *StreamError) Error() string {
	if e.Partial.ID == "" {
		return fmt.Sprintf("posting stream failed: %v", e.Err)
	}
	return fmt.Sprintf("posting stream failed in transaction %s: %v", e.Partial.ID, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// GroupTransactions partitions a stream of postings, already ordered by
// transaction id, into runs of equal ids. Only the open transaction is held
// in memory. An empty stream yields no transactions.
func GroupTransactions(postings iter.Seq2[model.Posting, error]) iter.Seq2[Transaction, error] {
	return func(yield func(Transaction, error) bool) {
		var current Transaction
		open := false

		for posting, err := range postings {
			if err != nil {
				partial := current
				if !open {
					partial = Transaction{}
				}
				yield(Transaction{}, &StreamError{Err: err, Partial: partial})
				return
			}

			if open && posting.TxnIdx != current.ID {
				if !yield(current, nil) {
					return
				}
				open = false
			}

			if !open {
				current = Transaction{ID: posting.TxnIdx}
				open = true
			}
			current.Postings = append(current.Postings, posting)
		}

		if open {
			yield(current, nil)
		}
	}
}
