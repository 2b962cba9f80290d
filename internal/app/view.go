package app

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wahlandcase/ticketprefix/internal/models"
	"github.com/wahlandcase/ticketprefix/internal/ui"
)

// View renders the confirmation screen
func (m Model) View() string {
	if m.done {
		return ""
	}

	var lines []string
	lines = append(lines, ui.RenderBanner(false), "")

	lines = append(lines, "  "+ui.BranchFlow(m.info.Branch, m.info.BaseBranch))
	lines = append(lines, ui.KeyValue("prefix:", m.plan.Prefix, ui.ColorYellow))
	mode := "add where missing"
	if m.plan.Replace {
		mode = "replace existing tickets"
	}
	lines = append(lines, ui.KeyValue("mode:  ", mode, ui.ColorWhite))
	lines = append(lines, "")

	changes := len(m.plan.ToUpdate())
	lines = append(lines, ui.SectionHeader(fmt.Sprintf("COMMITS (%d to rewrite)", changes), ui.ColorCyan))
	lines = append(lines, "")

	entries := m.plan.Entries
	end := m.scroll + m.visibleEntries()
	if end > len(entries) {
		end = len(entries)
	}
	for _, e := range entries[m.scroll:end] {
		lines = append(lines, ui.PlanLine(e))
	}
	if hidden := len(entries) - end; hidden > 0 {
		dimStyle := lipgloss.NewStyle().Foreground(ui.ColorDarkGray)
		lines = append(lines, dimStyle.Render(fmt.Sprintf("  … %d more", hidden)))
	}
	lines = append(lines, "")

	lines = append(lines, ui.SectionHeader("CONFIRM", ui.ColorGreen))
	lines = append(lines, "")
	if m.info.HasRemote {
		warningStyle := lipgloss.NewStyle().Foreground(ui.ColorYellow).Bold(true)
		lines = append(lines, warningStyle.Render("  ⚠ Branch exists on the remote; you will need to force-push"))
		lines = append(lines, "")
	}
	lines = append(lines, ui.Box("Rewrite history of "+m.info.Branch+"?", ui.ColorMagenta))
	lines = append(lines, "")
	lines = append(lines, ui.YesNoButtons(m.confirmSelection))
	lines = append(lines, "")

	if m.showHelp {
		lines = append(lines, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		lines = append(lines, m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	return strings.Join(lines, "\n") + "\n"
}

// RenderDryRun writes one diff per changed commit followed by a count line
func RenderDryRun(w io.Writer, plan *models.RewritePlan) {
	updates := plan.ToUpdate()
	if len(updates) == 0 {
		fmt.Fprintln(w, "All commits already carry a ticket; nothing to do.")
		return
	}

	for i, e := range updates {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, ui.Diff(e))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d of %d commits would be rewritten (%d skipped).\n",
		len(updates), len(plan.Entries), plan.Count(models.Skip))
}

// RenderSummary writes the outcome of a rewrite and its cleanup
func RenderSummary(w io.Writer, result *models.RewriteResult, report models.CleanupReport) {
	icon, color := ui.StatusIcon("success")
	okStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	fmt.Fprintf(w, "%s Rewrote %d commit(s) on %s\n", okStyle.Render(icon), result.Rewritten, result.Branch)
	fmt.Fprintln(w, ui.KeyValue("old head:", short(result.OldHead), ui.ColorDarkGray))
	fmt.Fprintln(w, ui.KeyValue("new head:", short(result.NewHead), ui.ColorGreen))

	if len(report.Failed) > 0 {
		icon, color := ui.StatusIcon("warning")
		warnStyle := lipgloss.NewStyle().Foreground(color)
		refs := make([]string, 0, len(report.Failed))
		for ref := range report.Failed {
			refs = append(refs, ref)
		}
		sort.Strings(refs)
		for _, ref := range refs {
			fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%s could not remove %s: %s", icon, ref, report.Failed[ref])))
		}
	}

	dimStyle := lipgloss.NewStyle().Foreground(ui.ColorDarkGray)
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("To undo: git reset --hard %s", short(result.OldHead))))
}

func short(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
