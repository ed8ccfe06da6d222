package tui

import (
	"testing"

	"github.com/Veraticus/envelope-check/internal/model"
	"github.com/Veraticus/envelope-check/internal/reconcile"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failing(id string) reconcile.Result {
	txn := reconcile.Transaction{
		ID: id,
		Postings: []model.Posting{
			{TxnIdx: id, Description: "txn " + id, Account: "(Budget:Food)", Amount: "-5"},
			{TxnIdx: id, Description: "txn " + id, Account: "Expenses:Food", Amount: "4"},
		},
	}
	return reconcile.Result{Transaction: txn, Findings: reconcile.Findings(txn)}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewBrowser_SkipsCleanResults(t *testing.T) {
	results := []reconcile.Result{
		failing("1"),
		{Transaction: reconcile.Transaction{ID: "2"}},
		failing("3"),
	}

	b := NewBrowser("2024-03", results)
	require.Len(t, b.offsets, 2)
	assert.Equal(t, 0, b.offsets[0])
	assert.Greater(t, b.offsets[1], b.offsets[0])
	assert.Contains(t, b.content, "Mismatched budget amount for Expenses:Food")
	assert.Contains(t, b.title, "2 transaction(s)")
}

func TestNewBrowser_NoFindings(t *testing.T) {
	b := NewBrowser("", nil)
	assert.Empty(t, b.offsets)
	assert.Contains(t, b.content, "No findings")
}

func TestBrowser_Navigation(t *testing.T) {
	b := NewBrowser("2024-03", []reconcile.Result{failing("1"), failing("2"), failing("3")})

	next, _ := b.Update(tea.WindowSizeMsg{Width: 80, Height: 8})
	b = next.(Browser)

	next, _ = b.Update(keyMsg("n"))
	b = next.(Browser)
	assert.Equal(t, 1, b.Current())

	next, _ = b.Update(keyMsg("n"))
	next, _ = next.(Browser).Update(keyMsg("n"))
	b = next.(Browser)
	assert.Equal(t, 2, b.Current(), "jumping past the end stays on the last transaction")

	next, _ = b.Update(keyMsg("p"))
	b = next.(Browser)
	assert.Equal(t, 1, b.Current())

	next, _ = b.Update(keyMsg("g"))
	b = next.(Browser)
	assert.Equal(t, 0, b.Current())
	assert.Equal(t, 0, b.viewport.YOffset)
}

func TestBrowser_Quit(t *testing.T) {
	b := NewBrowser("", []reconcile.Result{failing("1")})

	next, cmd := b.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, next.View())
}

func TestBrowser_View(t *testing.T) {
	b := NewBrowser("2024-03", []reconcile.Result{failing("1")})

	view := b.View()
	assert.Contains(t, view, "Envelope findings for 2024-03")
	assert.Contains(t, view, "transaction 1/1")
	assert.Contains(t, view, "Errors found for transaction!")
}
