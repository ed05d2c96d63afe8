package engine

import "github.com/opensync/topicsync/change"

// Transition is the sequence of changes produced by one action, in causal
// pre-order, together with the client id that produced it. Transitions
// are the unit of undo/redo.
type Transition struct {
	ID           string
	ActionSource string
	Changes      []change.Change
}
