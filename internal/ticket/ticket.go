// Package ticket matches ticket identifiers such as JIRA-123 in branch names
// and commit subjects, and formats prefixed commit subjects.
//
// Everything here is a pure string or regexp operation. The patterns come from
// the loaded configuration; callers pass them in explicitly.
package ticket

import (
	"regexp"
	"strings"

	"github.com/wahlandcase/ticketprefix/internal/apperror"
)

// Placeholders understood by message templates.
const (
	PrefixPlaceholder  = "{prefix}"
	MessagePlaceholder = "{message}"
)

var placeholderRegex = regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_]*\}`)

// Extract applies pattern anywhere in branch and returns the first capture
// group, or the whole match when the pattern has no group.
func Extract(branch string, pattern *regexp.Regexp) (string, bool) {
	if pattern == nil {
		return "", false
	}
	match := pattern.FindStringSubmatch(branch)
	if match == nil {
		return "", false
	}
	if len(match) > 1 && match[1] != "" {
		return match[1], true
	}
	return match[0], true
}

// IsValid reports whether candidate has the strict ticket shape. Used for
// user-supplied tickets only.
func IsValid(candidate string, shape *regexp.Regexp) bool {
	if shape == nil {
		return candidate != ""
	}
	loc := shape.FindStringIndex(candidate)
	// Require a full-string match even if the configured shape is unanchored
	return loc != nil && loc[0] == 0 && loc[1] == len(candidate)
}

// HasPrefix reports whether the ticket pattern matches anywhere in the
// subject line of message.
func HasPrefix(message string, pattern *regexp.Regexp) bool {
	if pattern == nil {
		return false
	}
	return pattern.MatchString(Subject(message))
}

// Subject returns the first line of a commit message.
func Subject(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		message = message[:i]
	}
	return strings.TrimRight(message, "\r")
}

// Strip removes exactly the first ticket-shaped substring from subject and
// tidies the separator it leaves behind.
func Strip(subject string, pattern *regexp.Regexp) string {
	if pattern == nil {
		return subject
	}
	loc := pattern.FindStringIndex(subject)
	if loc == nil {
		return subject
	}

	before := subject[:loc[0]]
	after := subject[loc[1]:]

	// "[JIRA-1] msg" and "(JIRA-1) msg" leave an empty bracket pair behind
	for _, pair := range [][2]string{{"[", "]"}, {"(", ")"}} {
		if strings.HasSuffix(before, pair[0]) && strings.HasPrefix(after, pair[1]) {
			before = strings.TrimSuffix(before, pair[0])
			after = strings.TrimPrefix(after, pair[1])
		}
	}

	before = strings.TrimRight(before, " \t")
	after = strings.TrimLeft(after, " \t:|")
	if strings.HasPrefix(after, "- ") {
		after = strings.TrimLeft(after[2:], " \t")
	}

	switch {
	case before == "":
		return after
	case after == "":
		return before
	default:
		return before + " " + after
	}
}

// ValidateTemplate checks that template uses both placeholders and nothing
// else that looks like one.
func ValidateTemplate(template string) error {
	if !strings.Contains(template, PrefixPlaceholder) {
		return apperror.ConfigTemplate("message format %q is missing %s", template, PrefixPlaceholder)
	}
	if !strings.Contains(template, MessagePlaceholder) {
		return apperror.ConfigTemplate("message format %q is missing %s", template, MessagePlaceholder)
	}
	for _, p := range placeholderRegex.FindAllString(template, -1) {
		if p != PrefixPlaceholder && p != MessagePlaceholder {
			return apperror.ConfigTemplate("message format %q has unknown placeholder %s", template, p)
		}
	}
	return nil
}

// Format substitutes prefix and message into template.
func Format(template, prefix, message string) (string, error) {
	if err := ValidateTemplate(template); err != nil {
		return "", err
	}
	r := strings.NewReplacer(PrefixPlaceholder, prefix, MessagePlaceholder, message)
	return r.Replace(template), nil
}

// AddPrefix formats subject with prefix unless it already carries a ticket,
// in which case it is returned unchanged.
func AddPrefix(template, prefix, subject string, pattern *regexp.Regexp) (string, error) {
	if HasPrefix(subject, pattern) {
		return subject, nil
	}
	return Format(template, prefix, subject)
}

// ReplacePrefix strips the first ticket from subject and prepends prefix.
func ReplacePrefix(template, prefix, subject string, pattern *regexp.Regexp) (string, error) {
	return Format(template, prefix, Strip(subject, pattern))
}
