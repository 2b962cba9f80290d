package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/wahlandcase/ticketprefix/internal/apperror"
	"github.com/wahlandcase/ticketprefix/internal/config"
	"github.com/wahlandcase/ticketprefix/internal/git"
	"github.com/wahlandcase/ticketprefix/internal/models"
	"github.com/wahlandcase/ticketprefix/internal/rewrite"
	"github.com/wahlandcase/ticketprefix/internal/ticket"
)

// Repository is everything an invocation needs from the repository
type Repository interface {
	rewrite.History
	CurrentBranch() (string, error)
	IsClean() (bool, error)
	HasRemote(branch string) (bool, error)
	FindBaseBranch(candidates []string) (string, error)
	ResolveRange(base string) (*git.Range, error)
	Root() string
}

// Options are the per-invocation choices from the command line
type Options struct {
	// Ticket is a user-supplied ticket, validated against the ticket shape
	Ticket string
	// Prefix is a free-form prefix used as-is; it wins over Ticket
	Prefix string
	// Base overrides base branch detection
	Base string
	// Replace swaps existing tickets instead of skipping those commits
	Replace bool
	// DryRun prints the plan and exits without touching the repository
	DryRun bool
	// Force allows rewriting a branch that exists on the remote and
	// overwrites stale backup refs
	Force bool
}

// Runner drives one invocation through the state machine
type Runner struct {
	cfg     *config.Config
	repo    Repository
	confirm Confirmer
	out     io.Writer
	log     *slog.Logger

	state State
}

// NewRunner creates a Runner. out receives dry-run diffs and the summary.
func NewRunner(cfg *config.Config, repo Repository, confirm Confirmer, out io.Writer, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{cfg: cfg, repo: repo, confirm: confirm, out: out, log: log, state: StateIdle}
}

// State returns the current lifecycle state
func (r *Runner) State() State {
	return r.state
}

func (r *Runner) transition(s State) {
	r.log.Debug("state", "from", r.state.String(), "to", s.String())
	r.state = s
}

func (r *Runner) fail(err error) error {
	r.transition(StateFailed)
	return err
}

// Run executes the invocation. A dry run ends after planning. Every error is
// fatal; the repository is only mutated after all checks have passed.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	r.transition(StateResolving)

	branch, err := r.repo.CurrentBranch()
	if err != nil {
		return r.fail(err)
	}

	prefix, err := r.resolvePrefix(branch, opts)
	if err != nil {
		return r.fail(err)
	}

	if !opts.DryRun {
		clean, err := r.repo.IsClean()
		if err != nil {
			return r.fail(err)
		}
		if !clean {
			return r.fail(apperror.DirtyTree())
		}
	}

	hasRemote, err := r.repo.HasRemote(branch)
	if err != nil {
		return r.fail(err)
	}
	if hasRemote && !opts.Force && !opts.DryRun {
		return r.fail(apperror.UnpushedSafety(branch))
	}

	base := opts.Base
	if base == "" {
		base, err = r.repo.FindBaseBranch(r.cfg.Git.BaseBranches)
		if err != nil {
			return r.fail(err)
		}
	}
	if base == branch {
		return r.fail(&git.RangeResolutionError{Base: base, Reason: "current branch is the base branch"})
	}

	rng, err := r.repo.ResolveRange(base)
	if err != nil {
		return r.fail(err)
	}
	r.log.Debug("range resolved", "branch", branch, "base", base, "commits", len(rng.Commits))

	r.transition(StatePlanning)
	plan, err := rewrite.Plan(rng.Commits, prefix, opts.Replace, rewrite.NewPolicy(r.cfg))
	if err != nil {
		return r.fail(err)
	}
	plan.Branch = branch
	plan.Base = base
	plan.MergeBase = rng.MergeBase
	plan.Head = rng.Head

	if opts.DryRun {
		RenderDryRun(r.out, plan)
		r.transition(StateDone)
		return nil
	}

	if plan.IsEmpty() {
		fmt.Fprintln(r.out, "All commits already carry a ticket; nothing to do.")
		r.transition(StateDone)
		return nil
	}

	r.transition(StateAwaitConfirmation)
	info := models.NewRepoInfo(r.repo.Root(), branch, base).WithRemote(hasRemote)
	ok, err := r.confirm.Confirm(plan, info)
	if err != nil {
		return r.fail(err)
	}
	if !ok {
		r.transition(StateDone)
		return apperror.NotConfirmed()
	}

	r.transition(StateRewriting)
	rw := rewrite.New(r.repo, r.log)
	result, err := rw.Apply(ctx, plan, rewrite.Options{Force: opts.Force, Lock: r.cfg.Git.Lock})
	if err != nil {
		return r.fail(err)
	}

	r.transition(StateCleaningUp)
	report := rw.CleanupBackupRefs(ctx)

	RenderSummary(r.out, result, report)
	r.transition(StateDone)
	return nil
}

// resolvePrefix picks the prefix: --prefix as-is, then a validated --ticket,
// then the ticket in the branch name.
func (r *Runner) resolvePrefix(branch string, opts Options) (string, error) {
	switch {
	case opts.Prefix != "":
		return opts.Prefix, nil
	case opts.Ticket != "":
		if !ticket.IsValid(opts.Ticket, r.cfg.ShapeRegex()) {
			return "", apperror.InvalidTicket("ticket %q does not match %s", opts.Ticket, r.cfg.Tickets.Shape)
		}
		return opts.Ticket, nil
	}

	t, ok := ticket.Extract(branch, r.cfg.BranchRegex())
	if !ok {
		err := apperror.InvalidTicket("no ticket found in branch name %q", branch)
		err.Hint = "pass --ticket or --prefix"
		return "", err
	}
	r.log.Debug("ticket from branch", "branch", branch, "ticket", t)
	return t, nil
}

// IsUserAbort reports whether err is the user declining the rewrite
func IsUserAbort(err error) bool {
	return errors.Is(err, apperror.ErrNotConfirmed)
}
