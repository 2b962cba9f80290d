package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/wahlandcase/ticketprefix/internal/models"
	"github.com/wahlandcase/ticketprefix/internal/ticket"
)

// Range is the resolved set of commits a branch adds on top of its base
type Range struct {
	Base      string
	MergeBase string
	Head      string
	Commits   []models.Commit
}

// BranchCommits lists the commits in (merge-base(HEAD, base), HEAD], oldest first
func (r *Repo) BranchCommits(base string) ([]models.Commit, error) {
	rng, err := r.ResolveRange(base)
	if err != nil {
		return nil, err
	}
	return rng.Commits, nil
}

// ResolveRange resolves the branch range of HEAD against base
func (r *Repo) ResolveRange(base string) (*Range, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, &RangeResolutionError{Base: base, Reason: "HEAD does not point at a commit", Err: err}
	}
	return r.ResolveRangeAt(head.Hash().String(), base)
}

// ResolveRangeAt resolves the range of an arbitrary tip commit against base
func (r *Repo) ResolveRangeAt(tip, base string) (*Range, error) {
	tipHash := plumbing.NewHash(tip)
	tipCommit, err := r.repo.CommitObject(tipHash)
	if err != nil {
		return nil, &RangeResolutionError{Base: base, Reason: "unknown commit " + tip, Err: err}
	}

	baseHash, err := r.resolveBase(base)
	if err != nil {
		return nil, &RangeResolutionError{Base: base, Reason: "unknown base branch", Err: err}
	}
	baseCommit, err := r.repo.CommitObject(baseHash)
	if err != nil {
		return nil, &RangeResolutionError{Base: base, Reason: "base is not a commit", Err: err}
	}

	bases, err := tipCommit.MergeBase(baseCommit)
	if err != nil {
		return nil, &RangeResolutionError{Base: base, Reason: "merge-base failed", Err: err}
	}
	if len(bases) == 0 {
		return nil, &RangeResolutionError{Base: base, Reason: "no common ancestor (unrelated histories)"}
	}
	mergeBase := bases[0].Hash
	r.log.Debug("merge-base resolved", "base", base, "merge_base", mergeBase.String()[:7], "tip", tipHash.String()[:7])

	objs, err := r.commitsBetween(mergeBase, tipHash)
	if err != nil {
		return nil, &RangeResolutionError{Base: base, Reason: "listing commits failed", Err: err}
	}

	return &Range{
		Base:      base,
		MergeBase: mergeBase.String(),
		Head:      tipHash.String(),
		Commits:   toModels(objs),
	}, nil
}

// CommitsBetween lists commits reachable from to but not from from, oldest
// first. An empty from lists the whole history of to.
func (r *Repo) CommitsBetween(from, to string) ([]models.Commit, error) {
	exclude := plumbing.ZeroHash
	if from != "" {
		exclude = plumbing.NewHash(from)
	}
	objs, err := r.commitsBetween(exclude, plumbing.NewHash(to))
	if err != nil {
		return nil, err
	}
	return toModels(objs), nil
}

// commitsBetween walks from include, pruning everything reachable from
// exclude, and returns parents before children.
func (r *Repo) commitsBetween(exclude, include plumbing.Hash) ([]*object.Commit, error) {
	// Build set of commits reachable from exclude
	excluded := make(map[plumbing.Hash]bool)
	if !exclude.IsZero() {
		iter, err := r.repo.Log(&git.LogOptions{From: exclude})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", exclude.String()[:7], err)
		}
		err = iter.ForEach(func(c *object.Commit) error {
			excluded[c.Hash] = true
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if excluded[include] {
		return nil, nil
	}
	tip, err := r.repo.CommitObject(include)
	if err != nil {
		return nil, err
	}

	// Iterative post-order DFS so every commit comes after all its in-range
	// parents. First parents are visited first.
	type frame struct {
		commit *object.Commit
		next   int
	}
	visited := map[plumbing.Hash]bool{include: true}
	stack := []frame{{commit: tip}}
	var ordered []*object.Commit

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.commit.ParentHashes) {
			ph := top.commit.ParentHashes[top.next]
			top.next++
			if excluded[ph] || visited[ph] {
				continue
			}
			visited[ph] = true
			parent, err := r.repo.CommitObject(ph)
			if err != nil {
				if errors.Is(err, plumbing.ErrObjectNotFound) {
					// Shallow clone boundary
					continue
				}
				return nil, err
			}
			stack = append(stack, frame{commit: parent})
			continue
		}
		ordered = append(ordered, top.commit)
		stack = stack[:len(stack)-1]
	}

	return ordered, nil
}

func toModels(objs []*object.Commit) []models.Commit {
	commits := make([]models.Commit, 0, len(objs))
	for _, c := range objs {
		commits = append(commits, models.NewCommit(
			c.Hash.String(),
			ticket.Subject(c.Message),
			c.Message,
			c.NumParents(),
		))
	}
	return commits
}
