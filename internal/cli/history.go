package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/envelope-check/internal/storage"
)

const historyTimeLayout = "2006-01-02 15:04"

// ReportHistory writes recorded runs as a table, newest first.
func ReportHistory(w io.Writer, runs []storage.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No runs recorded yet"))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, HeaderStyle.Render("WHEN")+"\t"+HeaderStyle.Render("KIND")+"\t"+
		HeaderStyle.Render("PERIOD")+"\t"+HeaderStyle.Render("RESULT")+"\t"+HeaderStyle.Render("ID")); err != nil {
		return fmt.Errorf("failed to write history header: %w", err)
	}

	for _, run := range runs {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			run.CreatedAt.In(time.Local).Format(historyTimeLayout),
			run.Kind,
			displayPeriod(run.Period),
			runResult(run),
			SubtleStyle.Render(run.ID.String()),
		); err != nil {
			return fmt.Errorf("failed to write run: %w", err)
		}
	}
	return tw.Flush()
}

// ReportRun writes the details of one recorded run.
func ReportRun(w io.Writer, run *storage.Run) error {
	ledgerFile := run.LedgerFile
	if ledgerFile == "" {
		ledgerFile = "(default)"
	}

	body := fmt.Sprintf("Kind:     %s\nPeriod:   %s\nLedger:   %s\nWhen:     %s\nResult:   %s\nSummary:  %s",
		run.Kind,
		displayPeriod(run.Period),
		ledgerFile,
		run.CreatedAt.In(time.Local).Format(time.RFC1123),
		runResult(*run),
		run.Summary,
	)
	_, err := fmt.Fprintln(w, RenderBox("Run "+run.ID.String(), body))
	return err
}

func runResult(run storage.Run) string {
	if run.Passed {
		return SuccessStyle.Render("passed")
	}
	if run.FindingCount > 0 {
		return ErrorStyle.Render(fmt.Sprintf("failed (%d)", run.FindingCount))
	}
	return ErrorStyle.Render("failed")
}
