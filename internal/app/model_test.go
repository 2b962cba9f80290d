package app

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wahlandcase/ticketprefix/internal/models"
)

func runes(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func testPlan(n int) *models.RewritePlan {
	plan := &models.RewritePlan{Branch: "feat/JIRA-1-x", Base: "main", Prefix: "JIRA-1"}
	for i := 0; i < n; i++ {
		c := models.NewCommit(fmt.Sprintf("%040d", i), fmt.Sprintf("change %d", i), "", 1)
		plan.Entries = append(plan.Entries, models.PlanEntry{
			Commit:     c,
			Action:     models.AddPrefix,
			NewMessage: "JIRA-1 " + c.Message,
		})
	}
	return plan
}

func press(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_Keys(t *testing.T) {
	info := models.NewRepoInfo("/repo", "feat/JIRA-1-x", "main")

	tests := []struct {
		name      string
		keys      []tea.Msg
		confirmed bool
	}{
		{"enter defaults to no", []tea.Msg{enter}, false},
		{"y confirms", []tea.Msg{runes("y")}, true},
		{"n aborts", []tea.Msg{runes("n")}, false},
		{"left then enter", []tea.Msg{tea.KeyMsg{Type: tea.KeyLeft}, enter}, true},
		{"left right enter", []tea.Msg{runes("h"), runes("l"), enter}, false},
		{"esc quits", []tea.Msg{tea.KeyMsg{Type: tea.KeyEsc}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(New(testPlan(2), info), tt.keys...)
			if !m.done {
				t.Fatal("model should be done")
			}
			if m.Confirmed() != tt.confirmed {
				t.Errorf("Confirmed() = %v, want %v", m.Confirmed(), tt.confirmed)
			}
			if m.View() != "" {
				t.Error("finished model should render nothing")
			}
		})
	}
}

func TestModel_Scroll(t *testing.T) {
	info := models.NewRepoInfo("/repo", "feat/JIRA-1-x", "main")
	m := press(New(testPlan(30), info), tea.WindowSizeMsg{Width: 80, Height: 30})

	down := tea.KeyMsg{Type: tea.KeyDown}
	for i := 0; i < 100; i++ {
		m = press(m, down)
	}
	if m.scroll != m.maxScroll() {
		t.Errorf("scroll = %d, want clamp at %d", m.scroll, m.maxScroll())
	}
	m = press(m, runes("k"))
	if m.scroll != m.maxScroll()-1 {
		t.Errorf("scroll after up = %d", m.scroll)
	}

	if !strings.Contains(m.View(), "COMMITS (30 to rewrite)") {
		t.Errorf("view missing commit header:\n%s", m.View())
	}
}

func TestModel_ViewWarnsAboutRemote(t *testing.T) {
	info := models.NewRepoInfo("/repo", "feat/JIRA-1-x", "main").WithRemote(true)
	view := New(testPlan(1), info).View()
	if !strings.Contains(view, "force-push") {
		t.Errorf("view should warn about the remote branch:\n%s", view)
	}
	if !strings.Contains(view, "Rewrite history of feat/JIRA-1-x?") {
		t.Errorf("view missing prompt:\n%s", view)
	}
}
