package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/wahlandcase/ticketprefix/internal/apperror"
	"github.com/wahlandcase/ticketprefix/internal/ticket"
)

const fileName = "ticketprefix.toml"

var validate = validator.New()

type Config struct {
	Tickets TicketsConfig `toml:"tickets"`
	Git     GitConfig     `toml:"git"`
	Logging LoggingConfig `toml:"logging"`
	UI      UIConfig      `toml:"ui"`

	// Compiled from Tickets (not serialized)
	ticketRegex *regexp.Regexp
	branchRegex *regexp.Regexp
	shapeRegex  *regexp.Regexp
}

type TicketsConfig struct {
	// Pattern finds a ticket anywhere in a commit subject
	Pattern string `toml:"pattern" validate:"required"`
	// BranchPattern extracts the ticket from a branch name (first capture group)
	BranchPattern string `toml:"branch_pattern" validate:"required"`
	// Shape is the strict form a user-supplied --ticket must have
	Shape string `toml:"shape" validate:"required"`
	// MessageFormat is the subject template, e.g. "{prefix} {message}"
	MessageFormat string `toml:"message_format" validate:"required"`
}

type GitConfig struct {
	BaseBranches []string `toml:"base_branches" validate:"required,min=1,dive,required"`
	Remote       string   `toml:"remote" validate:"required"`
	Lock         bool     `toml:"lock"`
}

type LoggingConfig struct {
	Level  string `toml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `toml:"format" validate:"omitempty,oneof=text json"`
}

type UIConfig struct {
	Color string `toml:"color" validate:"omitempty,oneof=auto always never"`
}

func DefaultConfig() *Config {
	return &Config{
		Tickets: TicketsConfig{
			Pattern:       `[A-Z]{2,10}-\d{2,10}`,
			BranchPattern: `([A-Z]{2,10}-\d{2,10})`,
			Shape:         `^[A-Z]{2,10}-\d{2,10}$`,
			MessageFormat: "{prefix} {message}",
		},
		Git: GitConfig{
			BaseBranches: []string{"main", "master"},
			Remote:       "origin",
			Lock:         true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		UI: UIConfig{
			Color: "auto",
		},
	}
}

// Path returns the config file location. TICKETPREFIX_CONFIG overrides the
// default under the user config directory.
func Path() (string, error) {
	if p := os.Getenv("TICKETPREFIX_CONFIG"); p != "" {
		return p, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, fileName), nil
}

// Load reads the config at path, or the default location when path is empty.
// A missing file means defaults. The result is validated and compiled and must
// not be modified afterwards.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return finish(DefaultConfig())
		}
		path = p
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, apperror.Config("parsing config %s: %v", path, err)
		}
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.mergeEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.compileRegex(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeEnv() {
	if v := os.Getenv("TICKETPREFIX_TICKET_PATTERN"); v != "" {
		c.Tickets.Pattern = v
	}
	if v := os.Getenv("TICKETPREFIX_BRANCH_PATTERN"); v != "" {
		c.Tickets.BranchPattern = v
	}
	if v := os.Getenv("TICKETPREFIX_MESSAGE_FORMAT"); v != "" {
		c.Tickets.MessageFormat = v
	}
	if v := os.Getenv("TICKETPREFIX_BASE_BRANCHES"); v != "" {
		var branches []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				branches = append(branches, b)
			}
		}
		c.Git.BaseBranches = branches
	}
	if v := os.Getenv("TICKETPREFIX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks field constraints and the message template.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, e := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s: %s", e.Namespace(), formatValidationError(e)))
			}
			return apperror.Config("invalid config: %s", strings.Join(msgs, "; "))
		}
		return apperror.Config("invalid config: %v", err)
	}
	return ticket.ValidateTemplate(c.Tickets.MessageFormat)
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return "needs at least " + e.Param() + " entry"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "invalid value"
	}
}

func (c *Config) compileRegex() error {
	compile := func(name, pattern string) (*regexp.Regexp, error) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, apperror.Config("invalid tickets.%s %q: %v", name, pattern, err)
		}
		return re, nil
	}

	var err error
	if c.ticketRegex, err = compile("pattern", c.Tickets.Pattern); err != nil {
		return err
	}
	if c.branchRegex, err = compile("branch_pattern", c.Tickets.BranchPattern); err != nil {
		return err
	}
	if c.shapeRegex, err = compile("shape", c.Tickets.Shape); err != nil {
		return err
	}
	return nil
}

// TicketRegex matches a ticket anywhere in a commit subject.
func (c *Config) TicketRegex() *regexp.Regexp {
	return c.ticketRegex
}

// BranchRegex extracts a ticket from a branch name.
func (c *Config) BranchRegex() *regexp.Regexp {
	return c.branchRegex
}

// ShapeRegex validates a user-supplied ticket.
func (c *Config) ShapeRegex() *regexp.Regexp {
	return c.shapeRegex
}

// MessageFormat returns the subject template.
func (c *Config) MessageFormat() string {
	return c.Tickets.MessageFormat
}

// Marshal renders the config as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Save writes the config to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
