package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/envelope-check/internal/balance"
	"github.com/Veraticus/envelope-check/internal/bills"
	"github.com/Veraticus/envelope-check/internal/reconcile"
)

// PrintTransaction writes a transaction header followed by an aligned
// table of its postings.
func PrintTransaction(w io.Writer, txn reconcile.Transaction) error {
	if len(txn.Postings) == 0 {
		_, err := fmt.Fprintf(w, "Transaction %s (no postings)\n", txn.ID)
		return err
	}

	first := txn.Postings[0]
	header := strings.TrimSpace(strings.Join([]string{first.Date, first.Status, first.Code, first.Description}, " "))
	header = strings.Join(strings.Fields(header), " ")
	if first.Comment != "" {
		header += "  ; " + first.Comment
	}

	if _, err := fmt.Fprintf(w, "%s %s\n", BoldStyle.Render(header), SubtleStyle.Render("(txn "+txn.ID+")")); err != nil {
		return fmt.Errorf("failed to write transaction header: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range txn.Postings {
		account := p.Account
		if p.PostingStatus != "" {
			account = p.PostingStatus + " " + account
		}
		comment := ""
		if p.PostingComment != "" {
			comment = "; " + p.PostingComment
		}
		if _, err := fmt.Fprintf(tw, "    %s\t%s\t%s\n", account, p.Amount, comment); err != nil {
			return fmt.Errorf("failed to write posting: %w", err)
		}
	}
	return tw.Flush()
}

// ReportResult writes the postings and findings of a failing transaction.
// Clean results produce no output.
func ReportResult(w io.Writer, result reconcile.Result) error {
	if result.OK() {
		return nil
	}

	if _, err := fmt.Fprintf(w, "\n%s\n\n", FormatError("Errors found for transaction!")); err != nil {
		return err
	}
	if err := PrintTransaction(w, result.Transaction); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", BoldStyle.Render("Errors:")); err != nil {
		return err
	}
	for _, f := range result.Findings {
		if _, err := fmt.Fprintf(w, " %s %s\n", BulletIcon, ErrorStyle.Render(f.String())); err != nil {
			return err
		}
	}
	return nil
}

// ReportSummary writes the totals of a transactions run.
func ReportSummary(w io.Writer, period string, summary reconcile.Summary) error {
	line := fmt.Sprintf("%d transaction(s) checked for %s", summary.Transactions, displayPeriod(period))
	var msg string
	if summary.Failed == 0 {
		msg = FormatSuccess(line + ", all envelopes balance")
	} else {
		msg = FormatError(fmt.Sprintf("%s, %d with %d finding(s)", line, summary.Failed, summary.Findings))
	}
	_, err := fmt.Fprintf(w, "\n%s\n", msg)
	return err
}

// ReportBalances writes the outcome of the aggregate balance check.
func ReportBalances(w io.Writer, result balance.Result) error {
	if result.Match {
		_, err := fmt.Fprintln(w, FormatSuccess("Balances match"))
		return err
	}

	body := fmt.Sprintf("Budget balance: %s\nActual balance: %s", result.Envelope.String(), result.Net.String())
	_, err := fmt.Fprintf(w, "%s\n%s\n", FormatError("Budget and actual balances do not match!"), body)
	return err
}

// ReportBills writes one paid/not paid line per bill.
func ReportBills(w io.Writer, period string, statuses []bills.Status) error {
	if _, err := fmt.Fprintln(w, FormatTitle("Bills for period "+displayPeriod(period))); err != nil {
		return err
	}
	for _, s := range statuses {
		var line string
		if s.Paid {
			line = FormatSuccess(s.Name + " paid")
		} else {
			line = FormatError(s.Name + " not paid!")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func displayPeriod(period string) string {
	if period == "" {
		return "all dates"
	}
	return period
}
