package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// Progress shows a spinner counting transactions while the ledger output is
// streamed. The total is unknown up front. A nil *Progress is a no-op.
type Progress struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
}

// NewProgress creates a spinner writing to w, or nil when disabled.
func NewProgress(w io.Writer, description string, enabled bool) *Progress {
	if !enabled || w == nil {
		return nil
	}

	p := &Progress{writer: w}
	p.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("txn"),
		progressbar.OptionShowIts(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionClearOnFinish(),
	)
	return p
}

// Add counts one processed transaction.
func (p *Progress) Add() {
	if p == nil {
		return
	}
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Finish clears the spinner.
func (p *Progress) Finish() {
	if p == nil {
		return
	}
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	if _, err := fmt.Fprint(p.writer, "\r"); err != nil {
		slog.Warn("Failed to reset progress line", "error", err)
	}
}
