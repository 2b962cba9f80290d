package rewrite

import (
	"context"
	"log/slog"

	"github.com/wahlandcase/ticketprefix/internal/apperror"
	"github.com/wahlandcase/ticketprefix/internal/git"
	"github.com/wahlandcase/ticketprefix/internal/models"
)

// History is the repository surface the rewriter mutates
type History interface {
	RewriteMessages(ctx context.Context, opts git.RewriteOptions) (*models.RewriteResult, error)
	BackupRefs() ([]string, error)
	RemoveRef(name string) error
	Lock() (func(), error)
}

// Options controls a single Apply
type Options struct {
	// Force overwrites backup refs left by an earlier rewrite
	Force bool
	// Lock holds the repository lock for the duration of the rewrite
	Lock bool
}

// Rewriter applies precomputed plans to a repository
type Rewriter struct {
	repo History
	log  *slog.Logger
}

// New creates a Rewriter
func New(repo History, log *slog.Logger) *Rewriter {
	if log == nil {
		log = slog.Default()
	}
	return &Rewriter{repo: repo, log: log}
}

// Apply rewrites the branch exactly as plan says. Subjects are taken from the
// plan, never recomputed. Any failure is a RewriteFailed error.
func (rw *Rewriter) Apply(ctx context.Context, plan *models.RewritePlan, opts Options) (*models.RewriteResult, error) {
	messages := plan.Messages()
	if len(messages) == 0 {
		rw.log.Debug("nothing to rewrite", "branch", plan.Branch)
		return &models.RewriteResult{Branch: plan.Branch, OldHead: plan.Head, NewHead: plan.Head}, nil
	}

	if opts.Lock {
		unlock, err := rw.repo.Lock()
		if err != nil {
			return nil, apperror.RewriteFailed(err)
		}
		defer unlock()
	}

	rw.log.Info("rewriting history", "branch", plan.Branch, "commits", len(messages), "merge_base", short(plan.MergeBase))
	result, err := rw.repo.RewriteMessages(ctx, git.RewriteOptions{
		Branch:       plan.Branch,
		MergeBase:    plan.MergeBase,
		ExpectedHead: plan.Head,
		Messages:     messages,
		Force:        opts.Force,
	})
	if err != nil {
		return nil, apperror.RewriteFailed(err)
	}
	return result, nil
}

// CleanupBackupRefs deletes every backup ref. It never fails: each ref that
// cannot be removed is logged as a warning and reported.
func (rw *Rewriter) CleanupBackupRefs(ctx context.Context) models.CleanupReport {
	report := models.CleanupReport{Failed: make(map[string]string)}

	refs, err := rw.repo.BackupRefs()
	if err != nil {
		rw.log.Warn("listing backup refs", "error", err)
		report.Failed["refs/original/*"] = err.Error()
		return report
	}
	report.Found = len(refs)
	if len(refs) == 0 {
		rw.log.Debug("no backup refs to clean up")
		return report
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			rw.log.Warn("cleanup interrupted", "remaining", len(refs)-len(report.Removed)-len(report.Failed))
			report.Failed[ref] = err.Error()
			continue
		}
		if err := rw.repo.RemoveRef(ref); err != nil {
			rw.log.Warn("removing backup ref", "ref", ref, "error", err)
			report.Failed[ref] = err.Error()
			continue
		}
		report.Removed = append(report.Removed, ref)
	}
	return report
}

func short(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
