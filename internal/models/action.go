package models

// Action is what the rewrite does to a single commit
type Action int

const (
	// Skip leaves the message as it is
	Skip Action = iota
	// AddPrefix prepends the prefix to an unprefixed subject
	AddPrefix
	// ReplacePrefix swaps the existing ticket for the prefix
	ReplacePrefix
)

// String returns the action name used in dry-run output and logs
func (a Action) String() string {
	switch a {
	case Skip:
		return "skip"
	case AddPrefix:
		return "add-prefix"
	case ReplacePrefix:
		return "replace-prefix"
	default:
		return "unknown"
	}
}

// Changes reports whether the action produces a new message
func (a Action) Changes() bool {
	return a == AddPrefix || a == ReplacePrefix
}
