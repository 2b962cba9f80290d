package app

// State is where an invocation is in its lifecycle
type State int

const (
	StateIdle State = iota
	StateResolving
	StatePlanning
	StateAwaitConfirmation
	StateRewriting
	StateCleaningUp
	StateDone
	StateFailed
)

func (s State) String() string {
	names := []string{
		"Idle",
		"Resolving",
		"Planning",
		"AwaitConfirmation",
		"Rewriting",
		"CleaningUp",
		"Done",
		"Failed",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}
