package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Banner is the header shown above the confirmation screen
var Banner = []string{
	" _   _      _        _                    __ _      ",
	"| |_(_) ___| | _____| |_ _ __  _ __ ___ / _(_)_  __",
	"| __| |/ __| |/ / _ \\ __| '_ \\| '__/ _ \\ |_| \\ \\/ /",
	"| |_| | (__|   <  __/ |_| |_) | | |  __/  _| |>  < ",
	" \\__|_|\\___|_|\\_\\___|\\__| .__/|_|  \\___|_| |_/_/\\_\\",
	"                        |_|                         ",
}

// RenderBanner returns the styled banner, with a warning line in dry-run mode
func RenderBanner(dryRun bool) string {
	bannerStyle := lipgloss.NewStyle().Foreground(ColorCyan)

	var lines []string
	for _, line := range Banner {
		lines = append(lines, bannerStyle.Render(line))
	}

	if dryRun {
		lines = append(lines, "")
		warningStyle := lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)
		lines = append(lines, warningStyle.Render("⚠ DRY RUN MODE (nothing will be rewritten)"))
	}

	return strings.Join(lines, "\n")
}
