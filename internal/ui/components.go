package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wahlandcase/ticketprefix/internal/models"
)

// SectionHeader creates a styled section header with a title and color
// Example: "─── TITLE ───────────"
func SectionHeader(title string, color lipgloss.Color) string {
	dashes := strings.Repeat("─", max(25-len(title), 0))
	headerStyle := lipgloss.NewStyle().Foreground(color)
	titleStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return fmt.Sprintf("%s%s%s",
		headerStyle.Render("  ─── "),
		titleStyle.Render(title),
		headerStyle.Render(" "+dashes),
	)
}

// BranchFlow renders "feature → main" with each side in its branch color
func BranchFlow(head, base string) string {
	headStyle := lipgloss.NewStyle().Foreground(BranchColor(head)).Bold(true)
	baseStyle := lipgloss.NewStyle().Foreground(BranchColor(base)).Bold(true)
	arrowStyle := lipgloss.NewStyle().Foreground(ColorWhite)

	return headStyle.Render(head) + arrowStyle.Render(" → ") + baseStyle.Render(base)
}

// YesNoButtons creates interactive Yes/No buttons
// selection: 0 for Yes, 1 for No
func YesNoButtons(selection int) string {
	var yesBorder, yesText lipgloss.Color
	var noBorder, noText lipgloss.Color

	if selection == 0 {
		yesBorder = ColorGreen
		yesText = ColorGreen
	} else {
		yesBorder = ColorDarkGray
		yesText = ColorWhite
	}

	if selection == 1 {
		noBorder = ColorRed
		noText = ColorRed
	} else {
		noBorder = ColorDarkGray
		noText = ColorWhite
	}

	yesStyle := lipgloss.NewStyle().Foreground(yesBorder)
	yesTextStyle := lipgloss.NewStyle().Foreground(yesText).Bold(true)
	noStyle := lipgloss.NewStyle().Foreground(noBorder)
	noTextStyle := lipgloss.NewStyle().Foreground(noText).Bold(true)

	iconYes, iconNo := " ", " "
	if selection == 0 {
		iconYes = ">"
	} else {
		iconNo = ">"
	}

	line1 := yesStyle.Render("  ┌────────┐") + " " + noStyle.Render("┌───────┐")
	line2 := fmt.Sprintf("%s%s%s %s%s%s",
		yesStyle.Render("  │"),
		yesTextStyle.Render(fmt.Sprintf(" %s  YES ", iconYes)),
		yesStyle.Render("│"),
		noStyle.Render("│"),
		noTextStyle.Render(fmt.Sprintf(" %s  NO ", iconNo)),
		noStyle.Render("│"),
	)
	line3 := yesStyle.Render("  └────────┘") + " " + noStyle.Render("└───────┘")

	return line1 + "\n" + line2 + "\n" + line3
}

// StatusIcon returns the icon and color for a plan action or outcome
func StatusIcon(status string) (string, lipgloss.Color) {
	switch status {
	case "add-prefix":
		return "+", ColorGreen
	case "replace-prefix":
		return "↻", ColorYellow
	case "skip":
		return "·", ColorDarkGray
	case "success", "removed":
		return "✓", ColorGreen
	case "failed", "error":
		return "✗", ColorRed
	case "warning":
		return "⚠", ColorYellow
	default:
		return "·", ColorWhite
	}
}

// Diff renders one planned subject change:
//
//	abc1234
//	- fix bug
//	+ JIRA-1 fix bug
func Diff(entry models.PlanEntry) string {
	hashStyle := lipgloss.NewStyle().Foreground(ColorYellow)
	oldStyle := lipgloss.NewStyle().Foreground(ColorRed)
	newStyle := lipgloss.NewStyle().Foreground(ColorGreen)

	return fmt.Sprintf("%s\n%s\n%s",
		hashStyle.Render(entry.Commit.ShortHash),
		oldStyle.Render("- "+entry.Commit.Message),
		newStyle.Render("+ "+entry.NewMessage),
	)
}

// PlanLine renders a single plan entry as one line for the confirm screen
func PlanLine(entry models.PlanEntry) string {
	icon, color := StatusIcon(entry.Action.String())
	iconStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	hashStyle := lipgloss.NewStyle().Foreground(ColorDarkGray)

	msgStyle := lipgloss.NewStyle().Foreground(ColorWhite)
	msg := entry.NewMessage
	if !entry.Action.Changes() {
		msgStyle = lipgloss.NewStyle().Foreground(ColorDarkGray)
		if entry.Commit.IsMerge {
			msg += " (merge)"
		}
	}

	return fmt.Sprintf("  %s %s %s",
		iconStyle.Render(icon),
		hashStyle.Render(entry.Commit.ShortHash),
		msgStyle.Render(msg),
	)
}

// KeyValue renders "label value" with a dim label
func KeyValue(label, value string, color lipgloss.Color) string {
	labelStyle := lipgloss.NewStyle().Foreground(ColorDarkGray)
	valueStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	return fmt.Sprintf("  %s %s", labelStyle.Render(label), valueStyle.Render(value))
}

// Box creates a rounded bordered box
func Box(content string, borderColor lipgloss.Color) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1)

	return style.Render(content)
}

// max returns the maximum of two integers
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
