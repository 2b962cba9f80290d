package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/wahlandcase/ticketprefix/internal/models"
)

// ErrNotInteractive is returned when confirmation is needed but stdin is not a terminal
var ErrNotInteractive = errors.New("stdin is not a terminal; pass --yes to rewrite without confirmation")

// Confirmer asks the user whether to apply a plan
type Confirmer interface {
	Confirm(plan *models.RewritePlan, info models.RepoInfo) (bool, error)
}

// TeaConfirmer runs the bubbletea confirmation screen
type TeaConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// NewTeaConfirmer confirms on the given streams; in must be a terminal
func NewTeaConfirmer(in io.Reader, out io.Writer) *TeaConfirmer {
	return &TeaConfirmer{In: in, Out: out}
}

// Confirm shows the plan and waits for a yes or no
func (c *TeaConfirmer) Confirm(plan *models.RewritePlan, info models.RepoInfo) (bool, error) {
	f, ok := c.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false, ErrNotInteractive
	}

	p := tea.NewProgram(New(plan, info), tea.WithInput(c.In), tea.WithOutput(c.Out))
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("running confirmation: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return false, nil
	}
	return m.Confirmed(), nil
}

// AutoConfirm approves every plan. Used for --yes.
type AutoConfirm struct{}

func (AutoConfirm) Confirm(*models.RewritePlan, models.RepoInfo) (bool, error) {
	return true, nil
}
