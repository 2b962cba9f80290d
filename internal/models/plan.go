package models

// PlanEntry is the decision for one commit
type PlanEntry struct {
	Commit Commit
	Action Action
	// NewMessage is the new subject; equal to Commit.Message when Action is Skip
	NewMessage string
}

// RewritePlan is the ordered, oldest-first list of decisions for a branch range.
// It has exactly one entry per commit in the range.
type RewritePlan struct {
	// Branch is the branch being rewritten
	Branch string
	// Base is the base branch the range was resolved against
	Base string
	// MergeBase is the hash the range starts after (exclusive)
	MergeBase string
	// Head is the branch tip the plan was computed for
	Head string
	// Prefix is the ticket or custom prefix applied
	Prefix string
	// Replace is true when existing tickets are replaced
	Replace bool
	Entries []PlanEntry
}

// ToUpdate returns the entries whose message will change
func (p *RewritePlan) ToUpdate() []PlanEntry {
	var out []PlanEntry
	for _, e := range p.Entries {
		if e.Action.Changes() {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries have the given action
func (p *RewritePlan) Count(a Action) int {
	n := 0
	for _, e := range p.Entries {
		if e.Action == a {
			n++
		}
	}
	return n
}

// Messages maps commit hash to new subject for every changing entry. A
// replace that yields the same subject is left out.
func (p *RewritePlan) Messages() map[string]string {
	out := make(map[string]string)
	for _, e := range p.ToUpdate() {
		if e.NewMessage != e.Commit.Message {
			out[e.Commit.Hash] = e.NewMessage
		}
	}
	return out
}

// IsEmpty reports whether nothing would change
func (p *RewritePlan) IsEmpty() bool {
	return len(p.ToUpdate()) == 0
}
