package reconciler

import (
	"github.com/halaqa/halaqa/pkg/entries"
	"github.com/halaqa/halaqa/pkg/identity"
)

// State is everything a run accumulates: the identity registry with its
// next-id counters and the set of known fact keys. It is owned by one
// Engine at a time.
type State struct {
	Layout     Layout
	Identities *identity.Registry
	Entries    *entries.Set
}

// NewState creates empty state for layout.
func NewState(layout Layout) *State {
	return &State{
		Layout:     layout,
		Identities: identity.NewRegistry(layout.Scheme()),
		Entries:    entries.NewSet(layout.Policy()),
	}
}
