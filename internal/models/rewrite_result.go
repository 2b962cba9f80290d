package models

// RewriteResult describes a completed history rewrite
type RewriteResult struct {
	// Branch that was rewritten
	Branch string
	// OldHead is the branch tip before the rewrite
	OldHead string
	// NewHead is the branch tip after the rewrite
	NewHead string
	// Rewritten is the number of commits whose message changed
	Rewritten int
	// Replayed is the number of commits that got a new hash (message or parent change)
	Replayed int
	// BackupRef is the ref that kept OldHead alive during the rewrite
	BackupRef string
}

// CleanupReport describes the best-effort removal of backup refs
type CleanupReport struct {
	// Found is the number of backup refs that existed
	Found int
	// Removed lists the refs that were deleted
	Removed []string
	// Failed maps each ref that could not be deleted to its error message
	Failed map[string]string
}

// NothingFound reports whether there were no backup refs at all
func (r CleanupReport) NothingFound() bool {
	return r.Found == 0
}
