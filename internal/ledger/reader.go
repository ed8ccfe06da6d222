package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/Veraticus/envelope-check/internal/model"
)

// ReadPostings lazily decodes hledger CSV from r. The first row is the
// header; each later row becomes one posting. Iteration stops after the
// first error is yielded.
func ReadPostings(r io.Reader) iter.Seq2[model.Posting, error] {
	return func(yield func(model.Posting, error) bool) {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1

		header, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(model.Posting{}, fmt.Errorf("failed to read CSV header: %w", err))
			return
		}
		warnMissingHeaders(header)

		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(model.Posting{}, fmt.Errorf("failed to read CSV row: %w", err))
				return
			}

			row := make(map[string]string, len(header))
			for i, name := range header {
				if i < len(record) {
					row[name] = record[i]
				}
			}

			posting, err := model.NewPosting(row)
			if err != nil {
				line, _ := reader.FieldPos(0)
				yield(model.Posting{}, fmt.Errorf("line %d: %w", line, err))
				return
			}

			if !yield(posting, nil) {
				return
			}
		}
	}
}

func warnMissingHeaders(header []string) {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	var missing []string
	for _, h := range model.ExpectedHeaders {
		if !present[h] {
			missing = append(missing, h)
		}
	}

	if len(missing) > 0 {
		slog.Warn("ledger CSV is missing expected columns", "missing", missing)
	}
}
