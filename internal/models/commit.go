package models

// Commit is a snapshot of one commit in the resolved branch range. It goes
// stale as soon as the branch ref moves.
type Commit struct {
	// Hash is the full commit hash
	Hash string
	// ShortHash is the 7 character prefix of Hash
	ShortHash string
	// Message is the first line of the commit message
	Message string
	// FullMessage is the complete commit message including the body
	FullMessage string
	// ParentCount is the number of parents
	ParentCount int
	// IsMerge is true when the commit has more than one parent
	IsMerge bool
}

// NewCommit creates a Commit, deriving the short hash and merge flag
func NewCommit(hash, subject, fullMessage string, parentCount int) Commit {
	short := hash
	if len(short) > 7 {
		short = short[:7]
	}
	return Commit{
		Hash:        hash,
		ShortHash:   short,
		Message:     subject,
		FullMessage: fullMessage,
		ParentCount: parentCount,
		IsMerge:     parentCount > 1,
	}
}
