package app

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wahlandcase/ticketprefix/internal/models"
)

// KeyMap holds the confirmation screen bindings
type KeyMap struct {
	Left    key.Binding
	Right   key.Binding
	Yes     key.Binding
	No      key.Binding
	Confirm key.Binding
	Up      key.Binding
	Down    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "yes"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l", "tab"),
			key.WithHelp("→/l", "no"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "rewrite"),
		),
		No: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "abort"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No, k.Confirm, k.Help}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Confirm},
		{k.Yes, k.No, k.Quit},
		{k.Up, k.Down, k.Help},
	}
}

// Model is the confirmation screen shown before a rewrite
type Model struct {
	plan *models.RewritePlan
	info models.RepoInfo

	// UI state
	confirmSelection int // 0=Yes, 1=No
	scroll           int
	confirmed        bool
	done             bool

	keys     KeyMap
	help     help.Model
	showHelp bool

	// Window size
	width  int
	height int
}

// New creates the confirmation model for plan
func New(plan *models.RewritePlan, info models.RepoInfo) Model {
	return Model{
		plan:             plan,
		info:             info,
		confirmSelection: 1,
		keys:             DefaultKeyMap(),
		help:             help.New(),
		width:            80,
		height:           24,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Confirmed reports whether the user chose to rewrite
func (m Model) Confirmed() bool {
	return m.confirmed
}
