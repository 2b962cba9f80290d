// Package termfix keeps terminals with slow colour queries from stalling
// startup. Import it FIRST, before anything that loads lipgloss or termenv:
//
//	_ "github.com/wahlandcase/ticketprefix/internal/termfix"
package termfix

import "os"

// slowQueryTerminals are TERM_PROGRAM values whose replies to termenv's
// background colour query take long enough to be noticed
var slowQueryTerminals = map[string]bool{
	"WarpTerminal": true,
}

func init() {
	apply(os.Getenv, os.Setenv)
}

func apply(getenv func(string) string, setenv func(string, string) error) {
	if !slowQueryTerminals[getenv("TERM_PROGRAM")] {
		return
	}
	// dumb TERM skips the query; COLORTERM keeps colours on
	_ = setenv("TERM", "dumb")
	if getenv("COLORTERM") == "" {
		_ = setenv("COLORTERM", "truecolor")
	}
}
