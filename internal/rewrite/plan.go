// Package rewrite decides which commit subjects change and applies those
// decisions to the branch.
package rewrite

import (
	"regexp"

	"github.com/wahlandcase/ticketprefix/internal/config"
	"github.com/wahlandcase/ticketprefix/internal/models"
	"github.com/wahlandcase/ticketprefix/internal/ticket"
)

// Policy is the part of the configuration the planner needs
type Policy struct {
	// Pattern finds an existing ticket in a subject
	Pattern *regexp.Regexp
	// Template is the message format with {prefix} and {message}
	Template string
}

// NewPolicy takes the ticket pattern and message format from a loaded config
func NewPolicy(cfg *config.Config) Policy {
	return Policy{Pattern: cfg.TicketRegex(), Template: cfg.MessageFormat()}
}

// Plan computes one entry per commit, oldest first. Merge commits are always
// skipped. Without replace, subjects that already carry a ticket are skipped
// and the rest get the prefix; with replace, every non-merge subject has its
// first ticket swapped for prefix.
func Plan(commits []models.Commit, prefix string, replace bool, policy Policy) (*models.RewritePlan, error) {
	if err := ticket.ValidateTemplate(policy.Template); err != nil {
		return nil, err
	}

	plan := &models.RewritePlan{
		Prefix:  prefix,
		Replace: replace,
		Entries: make([]models.PlanEntry, 0, len(commits)),
	}

	for _, c := range commits {
		entry := models.PlanEntry{Commit: c, Action: models.Skip, NewMessage: c.Message}

		switch {
		case c.IsMerge:
			// never touched
		case replace:
			msg, err := ticket.ReplacePrefix(policy.Template, prefix, c.Message, policy.Pattern)
			if err != nil {
				return nil, err
			}
			entry.Action = models.ReplacePrefix
			entry.NewMessage = msg
		case !ticket.HasPrefix(c.Message, policy.Pattern):
			msg, err := ticket.Format(policy.Template, prefix, c.Message)
			if err != nil {
				return nil, err
			}
			entry.Action = models.AddPrefix
			entry.NewMessage = msg
		}

		plan.Entries = append(plan.Entries, entry)
	}

	return plan, nil
}
