// Package hooks implements the git hooks that keep new commits prefixed:
// commit-msg rejects subjects without a ticket, prepare-commit-msg fills the
// ticket in from the branch name, and pre-push checks every commit about to
// leave the machine. They use the same configured patterns as the rewriter.
package hooks

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/wahlandcase/ticketprefix/internal/apperror"
	"github.com/wahlandcase/ticketprefix/internal/config"
	"github.com/wahlandcase/ticketprefix/internal/git"
	"github.com/wahlandcase/ticketprefix/internal/models"
	"github.com/wahlandcase/ticketprefix/internal/ticket"
)

const zeroHash = "0000000000000000000000000000000000000000"

// Repository is what the hooks read from the repository
type Repository interface {
	CurrentBranch() (string, error)
	CommitsBetween(from, to string) ([]models.Commit, error)
	ResolveRangeAt(tip, base string) (*git.Range, error)
	FindBaseBranch(candidates []string) (string, error)
}

// Handler runs hooks against one repository
type Handler struct {
	cfg  *config.Config
	repo Repository
	log  *slog.Logger
}

// NewHandler creates a Handler
func NewHandler(cfg *config.Config, repo Repository, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{cfg: cfg, repo: repo, log: log}
}

// exempt reports whether a subject is one git generates or that will be
// squashed away, and so does not need a ticket.
func exempt(subject string) bool {
	for _, p := range []string{"Merge ", "Revert ", "fixup! ", "squash! ", "amend! "} {
		if strings.HasPrefix(subject, p) {
			return true
		}
	}
	return false
}

// subjectLine returns the first line of a commit message file that is
// neither blank nor a comment, and its index.
func subjectLine(lines []string) (string, int) {
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		return strings.TrimRight(l, "\r"), i
	}
	return "", -1
}

// CommitMsg rejects the message in path when its subject carries no ticket
func (h *Handler) CommitMsg(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading commit message: %w", err)
	}

	subject, _ := subjectLine(strings.Split(string(data), "\n"))
	if subject == "" || exempt(subject) {
		return nil
	}
	if ticket.HasPrefix(subject, h.cfg.TicketRegex()) {
		return nil
	}

	rejected := apperror.HookRejected("commit message %q has no ticket", subject)
	if t, ok := h.branchTicket(); ok {
		rejected.Hint = fmt.Sprintf("try: %s", mustFormat(h.cfg.MessageFormat(), t, subject))
	} else {
		rejected.Hint = "add a ticket such as JIRA-123 to the subject"
	}
	return rejected
}

// PrepareCommitMsg prefixes the message in path with the branch ticket.
// source is git's second argument: merges, squashes and reused commits are
// left alone.
func (h *Handler) PrepareCommitMsg(path, source string) error {
	switch source {
	case "merge", "squash", "commit":
		h.log.Debug("prepare-commit-msg skipped", "source", source)
		return nil
	}

	t, ok := h.branchTicket()
	if !ok {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading commit message: %w", err)
	}
	lines := strings.Split(string(data), "\n")

	subject, idx := subjectLine(lines)
	if subject != "" && (exempt(subject) || ticket.HasPrefix(subject, h.cfg.TicketRegex())) {
		return nil
	}

	prefixed, err := ticket.Format(h.cfg.MessageFormat(), t, subject)
	if err != nil {
		return err
	}
	if idx < 0 {
		lines = append([]string{prefixed}, lines...)
	} else {
		lines[idx] = prefixed
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("writing commit message: %w", err)
	}
	h.log.Debug("commit message prefixed", "ticket", t)
	return nil
}

// PrePush reads git's ref update lines from in and rejects the push when a
// new non-merge commit on a pushed branch has no ticket.
func (h *Handler) PrePush(in io.Reader) error {
	var offenders []models.Commit

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 4 {
			continue
		}
		localRef, localSha, remoteSha := fields[0], fields[1], fields[3]

		if localSha == zeroHash || !strings.HasPrefix(localRef, "refs/heads/") {
			continue
		}
		branch := strings.TrimPrefix(localRef, "refs/heads/")
		if h.isBaseBranch(branch) {
			h.log.Debug("pre-push skipping base branch", "branch", branch)
			continue
		}

		commits, err := h.pushedCommits(localSha, remoteSha)
		if err != nil {
			return err
		}
		for _, c := range commits {
			if c.IsMerge || exempt(c.Message) || ticket.HasPrefix(c.Message, h.cfg.TicketRegex()) {
				continue
			}
			offenders = append(offenders, c)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading push refs: %w", err)
	}

	if len(offenders) == 0 {
		return nil
	}

	var b strings.Builder
	for _, c := range offenders {
		fmt.Fprintf(&b, "\n  %s %s", c.ShortHash, c.Message)
	}
	err := apperror.HookRejected("%d commit(s) without a ticket:%s", len(offenders), b.String())
	err.Hint = "run ticketprefix to add the ticket, then push again"
	return err
}

// pushedCommits lists what the push adds. For a branch the remote does not
// have yet, that is everything since the base branch.
func (h *Handler) pushedCommits(localSha, remoteSha string) ([]models.Commit, error) {
	if remoteSha != zeroHash {
		commits, err := h.repo.CommitsBetween(remoteSha, localSha)
		if err == nil {
			return commits, nil
		}
		// Remote tip unknown locally (not fetched); fall back to the branch range
		h.log.Warn("remote commit not available locally", "remote_sha", remoteSha[:7], "error", err)
	}

	base, err := h.repo.FindBaseBranch(h.cfg.Git.BaseBranches)
	if err != nil {
		var nb *git.NoBaseBranchError
		if errors.As(err, &nb) {
			h.log.Warn("pre-push cannot find a base branch, not checking", "candidates", strings.Join(nb.Candidates, ","))
			return nil, nil
		}
		return nil, err
	}
	rng, err := h.repo.ResolveRangeAt(localSha, base)
	if err != nil {
		return nil, err
	}
	return rng.Commits, nil
}

func (h *Handler) isBaseBranch(branch string) bool {
	for _, b := range h.cfg.Git.BaseBranches {
		if b == branch {
			return true
		}
	}
	return false
}

func (h *Handler) branchTicket() (string, bool) {
	branch, err := h.repo.CurrentBranch()
	if err != nil {
		h.log.Debug("no branch for ticket lookup", "error", err)
		return "", false
	}
	return ticket.Extract(branch, h.cfg.BranchRegex())
}

func mustFormat(template, prefix, message string) string {
	s, err := ticket.Format(template, prefix, message)
	if err != nil {
		return prefix + " " + message
	}
	return s
}
