package models

// RepoInfo contains the state of the repository an invocation runs against
type RepoInfo struct {
	// Path to the repository root
	Path string
	// Branch is the current branch name
	Branch string
	// BaseBranch is the detected or requested base ("main", "master", ...)
	BaseBranch string
	// HasRemote is true when Branch has a remote counterpart
	HasRemote bool
}

// NewRepoInfo creates a new RepoInfo
func NewRepoInfo(path, branch, baseBranch string) RepoInfo {
	return RepoInfo{
		Path:       path,
		Branch:     branch,
		BaseBranch: baseBranch,
	}
}

// WithRemote sets the remote flag and returns the RepoInfo
func (r RepoInfo) WithRemote(hasRemote bool) RepoInfo {
	r.HasRemote = hasRemote
	return r
}
