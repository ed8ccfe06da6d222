// Package tui provides an interactive pager for reconciliation findings.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/envelope-check/internal/cli"
	"github.com/Veraticus/envelope-check/internal/reconcile"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	chromeHeight  = 4 // title, blank line, help, status
)

// Browser pages through the transactions that have findings.
type Browser struct {
	help     help.Model
	keymap   KeyMap
	title    string
	content  string
	offsets  []int
	viewport viewport.Model
	current  int
	quitting bool
}

// NewBrowser renders the failing results of a run into a scrollable view.
func NewBrowser(period string, results []reconcile.Result) Browser {
	content, offsets := render(results)

	vp := viewport.New(defaultWidth, defaultHeight-chromeHeight)
	vp.SetContent(content)

	title := "Envelope findings"
	if period != "" {
		title += " for " + period
	}

	return Browser{
		help:     help.New(),
		keymap:   DefaultKeyMap(),
		title:    fmt.Sprintf("%s (%d transaction(s))", title, len(offsets)),
		content:  content,
		offsets:  offsets,
		viewport: vp,
	}
}

// render writes every failing result and records the line each starts on.
func render(results []reconcile.Result) (string, []int) {
	var buf bytes.Buffer
	var offsets []int

	for _, r := range results {
		if r.OK() {
			continue
		}
		offsets = append(offsets, strings.Count(buf.String(), "\n"))
		// Writes to a bytes.Buffer cannot fail.
		_ = cli.ReportResult(&buf, r)
	}

	if len(offsets) == 0 {
		buf.WriteString(cli.FormatSuccess("No findings, all envelopes balance"))
	}
	return buf.String(), offsets
}

// Init implements tea.Model.
func (b Browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.viewport.Width = msg.Width
		b.viewport.Height = max(msg.Height-chromeHeight, 1)
		b.help.Width = msg.Width
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keymap.Quit), key.Matches(msg, b.keymap.ForceQuit):
			b.quitting = true
			return b, tea.Quit
		case key.Matches(msg, b.keymap.Next):
			b.jump(b.current + 1)
			return b, nil
		case key.Matches(msg, b.keymap.Prev):
			b.jump(b.current - 1)
			return b, nil
		case key.Matches(msg, b.keymap.Home):
			b.viewport.GotoTop()
			b.current = 0
			return b, nil
		case key.Matches(msg, b.keymap.End):
			b.viewport.GotoBottom()
			if len(b.offsets) > 0 {
				b.current = len(b.offsets) - 1
			}
			return b, nil
		}
	}

	var cmd tea.Cmd
	b.viewport, cmd = b.viewport.Update(msg)
	return b, cmd
}

func (b *Browser) jump(index int) {
	if len(b.offsets) == 0 {
		return
	}
	index = min(max(index, 0), len(b.offsets)-1)
	b.current = index
	b.viewport.SetYOffset(b.offsets[index])
}

// Current is the index of the transaction last jumped to.
func (b Browser) Current() int {
	return b.current
}

// View implements tea.Model.
func (b Browser) View() string {
	if b.quitting {
		return ""
	}

	status := cli.SubtleStyle.Render(fmt.Sprintf("%3.f%%", b.viewport.ScrollPercent()*100))
	if len(b.offsets) > 0 {
		status = cli.SubtleStyle.Render(fmt.Sprintf("transaction %d/%d  ", b.current+1, len(b.offsets))) + status
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		cli.TitleStyle.Render(b.title),
		b.viewport.View(),
		status,
		b.help.View(b.keymap),
	)
}

// Browse runs the browser until the user quits or ctx is canceled.
func Browse(ctx context.Context, period string, results []reconcile.Result) error {
	program := tea.NewProgram(NewBrowser(period, results),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run findings browser: %w", err)
	}
	return nil
}
