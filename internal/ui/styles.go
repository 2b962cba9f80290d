package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Note: Warp terminal fix is in internal/termfix package, imported first in main.go

var (
	ColorCyan     = lipgloss.Color("#00FFFF")
	ColorGreen    = lipgloss.Color("#00FF00")
	ColorYellow   = lipgloss.Color("#FFFF00")
	ColorRed      = lipgloss.Color("#FF0000")
	ColorMagenta  = lipgloss.Color("#FF00FF")
	ColorWhite    = lipgloss.Color("#FFFFFF")
	ColorDarkGray = lipgloss.Color("8") // ANSI 8
)

// SetColorMode picks the lipgloss colour profile. mode is "auto", "always"
// or "never"; noColor forces "never". In auto mode NO_COLOR and
// CLICOLOR_FORCE are honoured and stdout must be a terminal.
func SetColorMode(mode string, noColor bool) {
	if noColor {
		mode = "never"
	}
	switch mode {
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	default:
		lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())
	}
}

// BranchColor highlights protected base branches
func BranchColor(branch string) lipgloss.Color {
	switch branch {
	case "main", "master":
		return ColorRed
	case "dev", "develop", "staging":
		return ColorYellow
	default:
		return ColorCyan
	}
}
