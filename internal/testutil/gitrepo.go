// Package testutil builds throwaway repositories with go-git so tests never
// need a git binary.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Epoch is the author time of the first fixture commit
var Epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))

// Repo is a repository in a temp dir
type Repo struct {
	t    testing.TB
	Dir  string
	Git  *git.Repository
	tick int
}

// NewRepo creates a repository on main with one initial commit
func NewRepo(t testing.TB) *Repo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	r := &Repo{t: t, Dir: dir, Git: repo}
	r.Commit("initial commit")
	return r
}

// Signature returns the fixed author used for commit n
func Signature(n int) *object.Signature {
	return &object.Signature{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		When:  Epoch.Add(time.Duration(n) * time.Minute),
	}
}

func (r *Repo) worktree() *git.Worktree {
	r.t.Helper()
	wt, err := r.Git.Worktree()
	if err != nil {
		r.t.Fatalf("worktree: %v", err)
	}
	return wt
}

// WriteFile writes content to name inside the working tree without staging it
func (r *Repo) WriteFile(name, content string) {
	r.t.Helper()
	path := filepath.Join(r.Dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", name, err)
	}
}

// Commit changes a file and commits it with message on the current branch
func (r *Repo) Commit(message string) plumbing.Hash {
	r.t.Helper()
	r.tick++
	name := fmt.Sprintf("file%d.txt", r.tick)
	r.WriteFile(name, message+"\n")
	return r.commitFile(name, message, nil)
}

// Merge records a merge commit of other into the current branch
func (r *Repo) Merge(message string, other plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	r.tick++
	name := fmt.Sprintf("merge%d.txt", r.tick)
	r.WriteFile(name, message+"\n")
	return r.commitFile(name, message, []plumbing.Hash{r.Head(), other})
}

func (r *Repo) commitFile(name, message string, parents []plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	wt := r.worktree()
	if _, err := wt.Add(name); err != nil {
		r.t.Fatalf("add %s: %v", name, err)
	}
	sig := Signature(r.tick)
	committer := *sig
	committer.Name = "Committer"
	committer.When = sig.When.Add(30 * time.Second)
	h, err := wt.Commit(message, &git.CommitOptions{
		Author:    sig,
		Committer: &committer,
		Parents:   parents,
	})
	if err != nil {
		r.t.Fatalf("commit %q: %v", message, err)
	}
	return h
}

// Checkout switches to branch, creating it from HEAD when create is set
func (r *Repo) Checkout(branch string, create bool) {
	r.t.Helper()
	err := r.worktree().Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	})
	if err != nil {
		r.t.Fatalf("checkout %s: %v", branch, err)
	}
}

// Orphan points HEAD at a new branch whose only commit has no parents
func (r *Repo) Orphan(branch, message string) plumbing.Hash {
	r.t.Helper()
	head, err := r.Git.CommitObject(r.Head())
	if err != nil {
		r.t.Fatalf("head commit: %v", err)
	}
	c := &object.Commit{
		Author:    *Signature(99),
		Committer: *Signature(99),
		Message:   message,
		TreeHash:  head.TreeHash,
	}
	obj := r.Git.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		r.t.Fatalf("encode: %v", err)
	}
	h, err := r.Git.Storer.SetEncodedObject(obj)
	if err != nil {
		r.t.Fatalf("store: %v", err)
	}
	ref := plumbing.NewBranchReferenceName(branch)
	r.SetRef(ref, h)
	r.setHEAD(plumbing.NewSymbolicReference(plumbing.HEAD, ref))
	return h
}

// Detach points HEAD directly at h
func (r *Repo) Detach(h plumbing.Hash) {
	r.t.Helper()
	r.setHEAD(plumbing.NewHashReference(plumbing.HEAD, h))
}

func (r *Repo) setHEAD(ref *plumbing.Reference) {
	r.t.Helper()
	if err := r.Git.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("set HEAD: %v", err)
	}
}

// SetRef creates or moves a ref
func (r *Repo) SetRef(name plumbing.ReferenceName, h plumbing.Hash) {
	r.t.Helper()
	if err := r.Git.Storer.SetReference(plumbing.NewHashReference(name, h)); err != nil {
		r.t.Fatalf("set %s: %v", name, err)
	}
}

// PushRemote records branch as present on remote at its current tip
func (r *Repo) PushRemote(remote, branch string) {
	r.t.Helper()
	r.SetRef(plumbing.NewRemoteReferenceName(remote, branch), r.BranchHead(branch))
}

// Track configures branch to track remote/branch without creating the remote ref
func (r *Repo) Track(remote, branch string) {
	r.t.Helper()
	cfg, err := r.Git.Config()
	if err != nil {
		r.t.Fatalf("config: %v", err)
	}
	cfg.Branches[branch] = &config.Branch{
		Name:   branch,
		Remote: remote,
		Merge:  plumbing.NewBranchReferenceName(branch),
	}
	if err := r.Git.SetConfig(cfg); err != nil {
		r.t.Fatalf("set config: %v", err)
	}
}

// Head returns the commit HEAD resolves to
func (r *Repo) Head() plumbing.Hash {
	r.t.Helper()
	ref, err := r.Git.Head()
	if err != nil {
		r.t.Fatalf("head: %v", err)
	}
	return ref.Hash()
}

// BranchHead returns the tip of a local branch
func (r *Repo) BranchHead(branch string) plumbing.Hash {
	r.t.Helper()
	ref, err := r.Git.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		r.t.Fatalf("branch %s: %v", branch, err)
	}
	return ref.Hash()
}

// CommitObject loads a commit
func (r *Repo) CommitObject(h plumbing.Hash) *object.Commit {
	r.t.Helper()
	c, err := r.Git.CommitObject(h)
	if err != nil {
		r.t.Fatalf("commit %s: %v", h, err)
	}
	return c
}

// FirstParentLog returns the messages from tip back to (not including) stop,
// newest first, following first parents.
func (r *Repo) FirstParentLog(tip, stop plumbing.Hash) []string {
	r.t.Helper()
	var out []string
	c := r.CommitObject(tip)
	for c.Hash != stop {
		out = append(out, c.Message)
		if c.NumParents() == 0 {
			break
		}
		c = r.CommitObject(c.ParentHashes[0])
	}
	return out
}

// RefExists reports whether name resolves
func (r *Repo) RefExists(name plumbing.ReferenceName) bool {
	_, err := r.Git.Reference(name, true)
	return err == nil
}
