package engine

import (
	"log/slog"
	"os"

	"github.com/opensync/topicsync/change"
)

// defaultMaxRecursionDepth bounds listener-cascade recursion so that a
// cyclic-but-not-immediately-self-referential listener graph cannot blow
// the stack; it is the general-purpose limit, tightened to 0 or 1 during
// rollback and undo/redo respectively.
const defaultMaxRecursionDepth = 10000

// Option configures a StateMachine at construction time.
type Option func(*StateMachine)

// WithLogger sets the structured logger used for rollback/recursion
// diagnostics. Defaults to a text handler writing to stderr.
func WithLogger(l *slog.Logger) Option {
	return func(s *StateMachine) { s.log = l }
}

// WithOnChangesMade sets the broadcast callback: delivered with the
// filtered change log and action id when a recording scope exits, success
// or failure, provided the filtered log is non-empty.
func WithOnChangesMade(fn func(changes []change.Change, actionID string)) Option {
	return func(s *StateMachine) { s.onChangesMade = fn }
}

// WithOnTransitionDone sets the undo/redo feed: delivered once per
// successful, non-empty recording scope where emitTransition was set.
func WithOnTransitionDone(fn func(t *Transition)) Option {
	return func(s *StateMachine) { s.onTransitionDone = fn }
}

// WithOnTreeSnapshot installs the optional debugger seam named in
// SPEC_FULL.md §10: fired once per recording scope exit with a
// serializable dump of the transition tree.
func WithOnTreeSnapshot(fn func(TreeSnapshot)) Option {
	return func(s *StateMachine) { s.onTreeSnapshot = fn }
}

// WithMaxRecursionDepth overrides the default recursion-depth limit.
func WithMaxRecursionDepth(depth int) Option {
	return func(s *StateMachine) { s.maxRecursionDepth = depth }
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
