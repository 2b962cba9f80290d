package git

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/gofrs/flock"

	"github.com/wahlandcase/ticketprefix/internal/apperror"
)

// ErrDetachedHead is returned when HEAD does not point at a branch
var ErrDetachedHead = errors.New("HEAD is detached; check out a branch first")

// ErrLocked is returned when another rewrite holds the repository lock
var ErrLocked = errors.New("another ticketprefix rewrite is running in this repository")

const lockFileName = "ticketprefix.lock"

// Repo is an open repository. It is created once per invocation and passed
// to every component that needs repository access.
type Repo struct {
	repo   *git.Repository
	root   string
	remote string
	log    *slog.Logger
}

// Open finds the repository containing path (walking up like git does) and
// opens it. remote names the remote used for tracking checks ("origin").
func Open(path, remote string, log *slog.Logger) (*Repo, error) {
	if log == nil {
		log = slog.Default()
	}
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s is not inside a git repository", path)
		}
		return nil, &GitError{Command: "open", Output: err.Error(), Err: err}
	}

	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}

	return &Repo{repo: repo, root: root, remote: remote, log: log}, nil
}

// OpenCurrent opens the repository containing the working directory
func OpenCurrent(remote string, log *slog.Logger) (*Repo, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return Open(cwd, remote, log)
}

// Root returns the working tree root
func (r *Repo) Root() string {
	return r.root
}

// GitDir returns the repository's git directory
func (r *Repo) GitDir() string {
	if fs, ok := r.repo.Storer.(*filesystem.Storage); ok {
		return fs.Filesystem().Root()
	}
	return filepath.Join(r.root, ".git")
}

// CurrentBranch returns the short name of the checked out branch
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", &GitError{Command: "symbolic-ref HEAD", Output: err.Error(), Err: err}
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", ErrDetachedHead
	}
	return head.Target().Short(), nil
}

// IsClean reports whether there are no staged or unstaged changes to tracked
// files. Untracked files are ignored.
func (r *Repo) IsClean() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, &GitError{Command: "status", Output: err.Error(), Err: err}
	}
	status, err := wt.Status()
	if err != nil {
		return false, &GitError{Command: "status", Output: err.Error(), Err: err}
	}

	for path, s := range status {
		if s.Staging == git.Untracked && s.Worktree == git.Untracked {
			continue
		}
		if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
			r.log.Debug("working tree change", "path", path, "staging", string(s.Staging), "worktree", string(s.Worktree))
			return false, nil
		}
	}
	return true, nil
}

// HasRemote reports whether branch has an upstream configured or a
// counterpart under refs/remotes/<remote>/.
func (r *Repo) HasRemote(branch string) (bool, error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return false, &GitError{Command: "config", Output: err.Error(), Err: err}
	}
	if b, ok := cfg.Branches[branch]; ok && b.Remote != "" && b.Merge != "" {
		return true, nil
	}
	return r.refExists(plumbing.NewRemoteReferenceName(r.remote, branch)), nil
}

// FindBaseBranch returns the first candidate that exists locally or on the
// remote, probing candidates in order.
func (r *Repo) FindBaseBranch(candidates []string) (string, error) {
	for _, name := range candidates {
		if r.HasBranch(name) {
			r.log.Debug("base branch detected", "branch", name)
			return name, nil
		}
	}
	return "", &NoBaseBranchError{Candidates: candidates}
}

// HasBranch checks if a branch exists locally or on the remote
func (r *Repo) HasBranch(name string) bool {
	if r.refExists(plumbing.NewBranchReferenceName(name)) {
		return true
	}
	return r.refExists(plumbing.NewRemoteReferenceName(r.remote, name))
}

func (r *Repo) refExists(name plumbing.ReferenceName) bool {
	_, err := r.repo.Reference(name, true)
	return err == nil
}

// resolveBase turns a base branch name into a commit hash, preferring the
// local branch, then the remote branch, then any revision git understands.
func (r *Repo) resolveBase(base string) (plumbing.Hash, error) {
	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(base),
		plumbing.NewRemoteReferenceName(r.remote, base),
	} {
		if ref, err := r.repo.Reference(name, true); err == nil {
			return ref.Hash(), nil
		}
	}
	h, err := r.repo.ResolveRevision(plumbing.Revision(base))
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return *h, nil
}

// Lock takes the repository-wide rewrite lock. The returned function releases it.
func (r *Repo) Lock() (func(), error) {
	lock := flock.New(filepath.Join(r.GitDir(), lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			r.log.Warn("releasing lock", "error", err)
		}
	}, nil
}

// GitError provides better context for git operation failures
type GitError struct {
	Command string
	Output  string
	Err     error
}

func (e *GitError) Error() string {
	return "git " + e.Command + ": " + e.Output
}

func (e *GitError) Unwrap() error {
	return e.Err
}

// NoBaseBranchError indicates none of the base branch candidates exist
type NoBaseBranchError struct {
	Candidates []string
}

func (e *NoBaseBranchError) Error() string {
	return "no base branch found (tried " + strings.Join(e.Candidates, ", ") + "); pass --base"
}

func (e *NoBaseBranchError) Is(target error) bool {
	return target == apperror.ErrNoBaseBranch
}

// RangeResolutionError indicates the branch range could not be computed
type RangeResolutionError struct {
	Base   string
	Reason string
	Err    error
}

func (e *RangeResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve commits since %s: %s", e.Base, e.Reason)
}

func (e *RangeResolutionError) Unwrap() error {
	return e.Err
}

func (e *RangeResolutionError) Is(target error) bool {
	return target == apperror.ErrRangeResolution
}
