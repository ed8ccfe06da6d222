package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/Veraticus/envelope-check/internal/model"
)

// reportFlags restricts reports to unmarked, pending and cleared postings,
// converted to market value, as CSV.
var reportFlags = []string{"-UPC", "-O", "csv", "-V"}

// Client builds hledger invocations on top of a Runner.
type Client struct {
	runner Runner
}

// NewClient creates a client for the given runner.
func NewClient(runner Runner) *Client {
	return &Client{runner: runner}
}

// PrintArgs returns the arguments for a CSV transaction listing.
func PrintArgs(period string) []string {
	args := []string{"print", "-O", "csv"}
	if period != "" {
		args = append(args, "--period", period)
	}
	return args
}

// ReportArgs returns the arguments for a CSV summary report.
func ReportArgs(command string, accounts []string) []string {
	args := append([]string{command}, accounts...)
	return append(args, reportFlags...)
}

// Print streams the CSV transaction listing for period.
func (c *Client) Print(ctx context.Context, period string) (io.ReadCloser, error) {
	return c.runner.Stream(ctx, PrintArgs(period)...)
}

// Report runs a summary report (bs, bal, ...) restricted to accounts.
func (c *Client) Report(ctx context.Context, command string, accounts []string) ([]byte, error) {
	out, err := c.runner.Output(ctx, ReportArgs(command, accounts)...)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s report: %w", command, err)
	}
	return out, nil
}

// Postings streams the postings of period. The ledger process is started
// on the first pull and released on every exit path, including when the
// consumer stops early.
func (c *Client) Postings(ctx context.Context, period string) iter.Seq2[model.Posting, error] {
	return func(yield func(model.Posting, error) bool) {
		stream, err := c.Print(ctx, period)
		if err != nil {
			yield(model.Posting{}, err)
			return
		}

		closed := false
		defer func() {
			if !closed {
				_ = stream.Close()
			}
		}()

		var streamErr error
		for posting, err := range ReadPostings(stream) {
			if err != nil {
				streamErr = err
				break
			}
			if !yield(posting, nil) {
				return
			}
		}

		closed = true
		if closeErr := stream.Close(); closeErr != nil {
			streamErr = errors.Join(streamErr, closeErr)
		}
		if streamErr != nil {
			yield(model.Posting{}, streamErr)
		}
	}
}
