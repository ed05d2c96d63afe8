package engine

import (
	"fmt"
	"log/slog"

	"github.com/opensync/topicsync/change"
	"github.com/opensync/topicsync/pkg/ulid"
	"github.com/opensync/topicsync/topic"
)

// RecordOptions configures one recording scope; see §4.4.1.
type RecordOptions struct {
	ActionSource   string
	ActionID       string
	AllowReentry   bool
	EmitTransition bool
}

// StateMachine owns the topic registry, the current transition tree
// (only while recording), and the scoped cross-cutting state described in
// spec.md §4.4 and §5: is_recording, changes_made, the apply-stack,
// inside_emit_change, and the recursion-depth limit.
type StateMachine struct {
	registry *topic.Registry

	isRecording bool
	changesMade []change.Change
	tree        *tree

	applyStack    []string
	applyStackSet map[string]bool

	maxRecursionDepth int
	insideEmit        bool

	onChangesMade    func(changes []change.Change, actionID string)
	onTransitionDone func(t *Transition)
	onTreeSnapshot   func(TreeSnapshot)

	log *slog.Logger
}

// New builds a StateMachine around registry, applying opts.
func New(registry *topic.Registry, opts ...Option) *StateMachine {
	s := &StateMachine{
		registry:          registry,
		maxRecursionDepth: defaultMaxRecursionDepth,
		applyStackSet:     map[string]bool{},
		log:               defaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTopic creates a topic directly in the registry. The external façade
// instead routes topic creation through topic_list so that it happens
// inside a recording scope (SPEC_FULL.md §4.5); this method is the lower
// layer that wiring calls into.
func (s *StateMachine) AddTopic(name string, tt change.TopicType, stateful, orderStrict bool, init any) (topic.Topic, error) {
	return s.registry.Add(name, tt, stateful, orderStrict, init)
}

func (s *StateMachine) RemoveTopic(name string) error { return s.registry.Remove(name) }
func (s *StateMachine) HasTopic(name string) bool     { return s.registry.Has(name) }
func (s *StateMachine) Topic(name string) (topic.Topic, bool) { return s.registry.Get(name) }

func (s *StateMachine) getTopic(name string) (topic.Topic, error) {
	tp, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("engine: topic %q not found", name)
	}
	return tp, nil
}

// Record is the scoped recording bracket of §4.4.1. If already recording
// and opts.AllowReentry, fn just runs inline against the outer scope. If
// already recording and not reentrant, it fails outright. Otherwise a
// fresh changes_made log and transition tree are opened, fn runs, and on
// every exit path (including fn returning an error) the scope is released:
// is_recording reset, the tree dropped, and the appropriate callbacks
// fired.
func (s *StateMachine) Record(opts RecordOptions, fn func() error) (err error) {
	if s.isRecording {
		if !opts.AllowReentry {
			return ErrAlreadyRecording
		}
		return fn()
	}

	s.isRecording = true
	s.changesMade = nil
	s.tree = newTree()

	defer func() {
		finishedTree := s.tree
		made := s.changesMade

		s.isRecording = false
		s.changesMade = nil
		s.tree = nil

		filtered := filterBroadcast(made)
		if len(filtered) > 0 && s.onChangesMade != nil {
			s.onChangesMade(filtered, opts.ActionID)
		}
		if s.onTreeSnapshot != nil {
			s.onTreeSnapshot(snapshotOf(finishedTree))
		}
	}()

	if ferr := fn(); ferr != nil {
		s.log.Warn("transition failed, rolling back", "action_id", opts.ActionID, "error", ferr)
		if cerr := s.cleanupFailedTransition(); cerr != nil {
			wrapped := &InternalInconsistencyError{Cause: cerr}
			s.log.Error("rollback failed, state is inconsistent", "action_id", opts.ActionID, "error", wrapped)
			return wrapped
		}
		return ferr
	}

	if opts.EmitTransition {
		changes := s.tree.preorder()
		if len(changes) > 0 && s.onTransitionDone != nil {
			s.onTransitionDone(&Transition{
				ID:           ulid.New(),
				ActionSource: opts.ActionSource,
				Changes:      changes,
			})
		}
	}
	return nil
}

// ApplyChange is the core recursive apply algorithm of §4.4.2.
func (s *StateMachine) ApplyChange(c change.Change) error {
	tp, err := s.getTopic(c.TopicName())
	if err != nil {
		return err
	}

	// Step 1: recursion guard. Stateful, not-inside-an-emit changes are
	// silently dropped once the apply-stack would grow past the limit.
	if tp.IsStateful() && !s.insideEmit && len(s.applyStack)+1 > s.maxRecursionDepth {
		return nil
	}

	// Step 2: open a scope if none is active, then recurse inside it.
	if !s.isRecording {
		return s.Record(RecordOptions{EmitTransition: true}, func() error {
			return s.ApplyChange(c)
		})
	}

	// Step 3: cycle guard, keyed per-topic.
	if s.applyStackSet[c.TopicName()] {
		return nil
	}

	// Step 4: apply against the topic without notifying yet.
	old, newVal, err := tp.ApplyChange(c, false)
	if err != nil {
		return err
	}

	// Step 5.
	s.changesMade = append(s.changesMade, c)

	// Step 6: non-stateful or already-inside-an-emit changes notify
	// directly, with no tree bookkeeping.
	if !tp.IsStateful() || s.insideEmit {
		return tp.NotifyListeners(c, old, newVal)
	}

	// Step 7: tree + apply-stack + emit bookkeeping around the notify.
	return s.applyWithBookkeeping(tp, c, old, newVal)
}

func (s *StateMachine) applyWithBookkeeping(tp topic.Topic, c change.Change, old, newVal any) error {
	node := s.tree.addChildToCurrent(c)

	wasInsideEmit := s.insideEmit
	enteredEmit := false
	if isEventChange(c) && !wasInsideEmit {
		s.insideEmit = true
		enteredEmit = true
	}

	name := c.TopicName()
	s.applyStack = append(s.applyStack, name)
	s.applyStackSet[name] = true

	notifyErr := s.tree.withCurrent(node, func() error {
		return tp.NotifyListeners(c, old, newVal)
	})

	s.applyStack = s.applyStack[:len(s.applyStack)-1]
	delete(s.applyStackSet, name)
	if enteredEmit {
		s.insideEmit = false
	}

	if notifyErr == nil {
		return nil
	}

	if wasInsideEmit || enteredEmit {
		// Fatal: state may already have externally visible side effects
		// from the failed listener chain. No local compensation.
		return &ListenerError{InsideEmit: true, Cause: notifyErr}
	}

	prevLimit := s.maxRecursionDepth
	s.maxRecursionDepth = 0
	comps, cerr := s.tree.clearSubtree(node, s.getTopic)
	s.maxRecursionDepth = prevLimit
	s.changesMade = append(s.changesMade, comps...)
	if cerr != nil {
		return &InternalInconsistencyError{Cause: cerr}
	}
	return &ListenerError{InsideEmit: false, Cause: notifyErr}
}

// cleanupFailedTransition runs with recursion blocked, asserts the current
// node is back at the root, and compensates the whole tree.
func (s *StateMachine) cleanupFailedTransition() error {
	prevLimit := s.maxRecursionDepth
	s.maxRecursionDepth = 0
	defer func() { s.maxRecursionDepth = prevLimit }()

	if s.tree.current != s.tree.root {
		return fmt.Errorf("engine: rollback invariant violated: current node is not root")
	}
	comps, err := s.tree.clearSubtree(s.tree.root, s.getTopic)
	s.changesMade = append(s.changesMade, comps...)
	return err
}

// Undo inverts t's changes in reverse order under a recursion limit of 1
// (so each inverse notifies its own listeners once but does not cascade
// into further stateful topics), without emitting a new transition.
func (s *StateMachine) Undo(t *Transition) error {
	return s.Record(RecordOptions{ActionSource: t.ActionSource, EmitTransition: false}, func() error {
		prevLimit := s.maxRecursionDepth
		s.maxRecursionDepth = 1
		defer func() { s.maxRecursionDepth = prevLimit }()

		for i := len(t.Changes) - 1; i >= 0; i-- {
			if err := s.ApplyChange(t.Changes[i].Inverse()); err != nil {
				return err
			}
		}
		return nil
	})
}

// Redo re-applies t's original changes in forward order, symmetric to Undo.
func (s *StateMachine) Redo(t *Transition) error {
	return s.Record(RecordOptions{ActionSource: t.ActionSource, EmitTransition: false}, func() error {
		prevLimit := s.maxRecursionDepth
		s.maxRecursionDepth = 1
		defer func() { s.maxRecursionDepth = prevLimit }()

		for _, c := range t.Changes {
			if err := s.ApplyChange(c); err != nil {
				return err
			}
		}
		return nil
	})
}

func filterBroadcast(changes []change.Change) []change.Change {
	out := make([]change.Change, 0, len(changes))
	for _, c := range changes {
		switch c.(type) {
		case *change.NullChange, *change.EventEmitChange, *change.ReversedEmitChange:
			continue
		}
		out = append(out, c)
	}
	return out
}

func isEventChange(c change.Change) bool {
	switch c.(type) {
	case *change.EventEmitChange, *change.ReversedEmitChange:
		return true
	default:
		return false
	}
}
