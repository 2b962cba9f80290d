package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/wahlandcase/ticketprefix/internal/models"
)

// BackupRefPrefix is where the pre-rewrite branch tip is kept
const BackupRefPrefix = "refs/original/"

var (
	// ErrHeadMoved is returned when the branch no longer points where the plan expects
	ErrHeadMoved = errors.New("branch moved since the plan was computed")
	// ErrBackupExists is returned when a previous backup ref is still present and Force is off
	ErrBackupExists = errors.New("a previous backup exists; use force to overwrite it")
)

// RewriteOptions describes one message rewrite over a branch range
type RewriteOptions struct {
	// Branch is the short branch name to move
	Branch string
	// MergeBase is the exclusive lower bound of the range
	MergeBase string
	// ExpectedHead is the tip the branch must still point at
	ExpectedHead string
	// Messages maps commit hash to its new subject line
	Messages map[string]string
	// Force overwrites an existing backup ref
	Force bool
}

// BackupRefName returns the backup ref used for branch
func BackupRefName(branch string) plumbing.ReferenceName {
	return plumbing.ReferenceName(BackupRefPrefix + plumbing.NewBranchReferenceName(branch).String())
}

// RewriteMessages replays the range (MergeBase, ExpectedHead] oldest first,
// replacing subject lines from opts.Messages. Trees, authors, committers,
// timestamps and bodies are copied; parents are remapped to the replayed
// commits. The old tip is kept under a backup ref and the branch is moved with
// a compare-and-swap against ExpectedHead.
func (r *Repo) RewriteMessages(ctx context.Context, opts RewriteOptions) (*models.RewriteResult, error) {
	branchRef := plumbing.NewBranchReferenceName(opts.Branch)
	current, err := r.repo.Reference(branchRef, false)
	if err != nil {
		return nil, &GitError{Command: "rev-parse " + opts.Branch, Output: err.Error(), Err: err}
	}
	if current.Type() != plumbing.HashReference || current.Hash().String() != opts.ExpectedHead {
		return nil, fmt.Errorf("%w: %s is at %s, expected %s", ErrHeadMoved, opts.Branch, current.Hash().String()[:7], short(opts.ExpectedHead))
	}

	oldHead := current.Hash()
	commits, err := r.commitsBetween(plumbing.NewHash(opts.MergeBase), oldHead)
	if err != nil {
		return nil, fmt.Errorf("listing range: %w", err)
	}

	inRange := make(map[string]bool, len(commits))
	for _, c := range commits {
		inRange[c.Hash.String()] = true
	}
	var missing []string
	for h := range opts.Messages {
		if !inRange[h] {
			missing = append(missing, short(h))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: commits %s are not on %s", ErrHeadMoved, strings.Join(missing, ", "), opts.Branch)
	}

	backupRef := BackupRefName(opts.Branch)
	if !opts.Force && r.refExists(backupRef) {
		return nil, fmt.Errorf("%w (%s)", ErrBackupExists, backupRef)
	}

	result := &models.RewriteResult{
		Branch:  opts.Branch,
		OldHead: oldHead.String(),
	}

	mapping := make(map[plumbing.Hash]plumbing.Hash, len(commits))
	for _, c := range commits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		parents, reparented := remapParents(c.ParentHashes, mapping)
		subject, changes := opts.Messages[c.Hash.String()]
		if !changes && !reparented {
			mapping[c.Hash] = c.Hash
			continue
		}

		message := c.Message
		if changes {
			message = replaceSubject(c.Message, subject)
		}

		newHash, err := r.writeCommit(c, message, parents)
		if err != nil {
			return nil, &GitError{Command: "commit-tree " + c.Hash.String()[:7], Output: err.Error(), Err: err}
		}
		mapping[c.Hash] = newHash
		result.Replayed++
		if changes {
			result.Rewritten++
		}
		r.log.Debug("commit replayed", "old", c.Hash.String()[:7], "new", newHash.String()[:7], "message_changed", changes)
	}

	newHead, ok := mapping[oldHead]
	if !ok {
		// Empty range: the branch tip is the merge-base itself
		newHead = oldHead
	}
	result.NewHead = newHead.String()
	if newHead == oldHead {
		return result, nil
	}

	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(backupRef, oldHead)); err != nil {
		return nil, &GitError{Command: "update-ref " + backupRef.String(), Output: err.Error(), Err: err}
	}
	result.BackupRef = backupRef.String()

	if err := r.repo.Storer.CheckAndSetReference(plumbing.NewHashReference(branchRef, newHead), current); err != nil {
		return nil, &GitError{Command: "update-ref " + branchRef.String(), Output: err.Error(), Err: err}
	}
	r.log.Info("branch rewritten", "branch", opts.Branch, "old_head", oldHead.String()[:7], "new_head", newHead.String()[:7], "rewritten", result.Rewritten)

	return result, nil
}

func (r *Repo) writeCommit(src *object.Commit, message string, parents []plumbing.Hash) (plumbing.Hash, error) {
	// The signature would no longer verify, so it is dropped
	c := &object.Commit{
		Author:       src.Author,
		Committer:    src.Committer,
		MergeTag:     src.MergeTag,
		Message:      message,
		TreeHash:     src.TreeHash,
		ParentHashes: parents,
		Encoding:     src.Encoding,
	}
	obj := r.repo.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		return plumbing.ZeroHash, err
	}
	return r.repo.Storer.SetEncodedObject(obj)
}

func remapParents(parents []plumbing.Hash, mapping map[plumbing.Hash]plumbing.Hash) ([]plumbing.Hash, bool) {
	out := make([]plumbing.Hash, len(parents))
	changed := false
	for i, p := range parents {
		out[i] = p
		if n, ok := mapping[p]; ok && n != p {
			out[i] = n
			changed = true
		}
	}
	return out, changed
}

// replaceSubject swaps the first line of message for subject, keeping the body
func replaceSubject(message, subject string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return subject + message[i:]
	}
	return subject
}

// BackupRefs lists every ref under refs/original/
func (r *Repo) BackupRefs() ([]string, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, &GitError{Command: "for-each-ref", Output: err.Error(), Err: err}
	}
	defer refs.Close()

	var names []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if strings.HasPrefix(ref.Name().String(), BackupRefPrefix) {
			names = append(names, ref.Name().String())
		}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// RemoveRef deletes a ref
func (r *Repo) RemoveRef(name string) error {
	if err := r.repo.Storer.RemoveReference(plumbing.ReferenceName(name)); err != nil {
		return &GitError{Command: "update-ref -d " + name, Output: err.Error(), Err: err}
	}
	r.log.Info("ref removed", "ref", name)
	return nil
}

func short(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
