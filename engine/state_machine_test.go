package engine

import (
	"testing"

	"github.com/opensync/topicsync/change"
	"github.com/opensync/topicsync/topic"
)

func newTestMachine() (*StateMachine, *topic.Registry) {
	reg := topic.NewRegistry()
	sm := New(reg)
	return sm, reg
}

func TestApplyChangeCommitsOutsideAnyExplicitScope(t *testing.T) {
	sm, reg := newTestMachine()
	reg.Add("s", change.TopicString, true, false, "hello")

	if err := sm.ApplyChange(change.NewSetChange("s", change.TopicString, "world", "")); err != nil {
		t.Fatalf("apply: %v", err)
	}
	tp, _ := reg.Get("s")
	if tp.Value() != "world" {
		t.Fatalf("got %v", tp.Value())
	}
}

func TestBroadcastLogMatchesPreorderMinusFiltered(t *testing.T) {
	sm, reg := newTestMachine()
	reg.Add("a", change.TopicString, true, false, "")
	reg.Add("b", change.TopicString, true, false, "")

	var broadcast []change.Change
	sm.onChangesMade = func(changes []change.Change, actionID string) {
		broadcast = append(broadcast, changes...)
	}

	err := sm.Record(RecordOptions{ActionID: "act1", EmitTransition: true}, func() error {
		if err := sm.ApplyChange(change.NewSetChange("a", change.TopicString, "1", "")); err != nil {
			return err
		}
		return sm.ApplyChange(change.NewSetChange("b", change.TopicString, "2", ""))
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(broadcast) != 2 {
		t.Fatalf("got %d changes, want 2", len(broadcast))
	}
}

func TestFailingActionLeavesTopicsUntouched(t *testing.T) {
	sm, reg := newTestMachine()
	reg.Add("s", change.TopicString, true, false, "abc")

	err := sm.Record(RecordOptions{EmitTransition: true}, func() error {
		if err := sm.ApplyChange(change.NewSetChange("s", change.TopicString, "changed", "")); err != nil {
			return err
		}
		return sm.ApplyChange(change.NewStringInsertChange("s", "v0", 999, "x", ""))
	})
	if err == nil {
		t.Fatal("expected the action to fail")
	}
	tp, _ := reg.Get("s")
	if tp.Value() != "abc" {
		t.Fatalf("topic should have rolled back to %q, got %v", "abc", tp.Value())
	}
}

func TestUndoRestoresPreActionValueAndRedoReapplies(t *testing.T) {
	sm, reg := newTestMachine()
	reg.Add("s", change.TopicString, true, false, "abc")

	var transition *Transition
	sm.onTransitionDone = func(tr *Transition) { transition = tr }

	if err := sm.Record(RecordOptions{EmitTransition: true}, func() error {
		return sm.ApplyChange(change.NewSetChange("s", change.TopicString, "xyz", ""))
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if transition == nil {
		t.Fatal("expected a transition to be emitted")
	}

	tp, _ := reg.Get("s")
	if tp.Value() != "xyz" {
		t.Fatalf("got %v", tp.Value())
	}

	if err := sm.Undo(transition); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if tp.Value() != "abc" {
		t.Fatalf("undo should restore abc, got %v", tp.Value())
	}

	if err := sm.Redo(transition); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if tp.Value() != "xyz" {
		t.Fatalf("redo should restore xyz, got %v", tp.Value())
	}
}

func TestCycleGuardDropsSelfLoop(t *testing.T) {
	sm, reg := newTestMachine()
	tp, _ := reg.Add("a", change.TopicString, true, false, "")

	calls := 0
	tp.AddListener(func(c change.Change, old, new any) error {
		calls++
		if calls > 5 {
			t.Fatal("listener recursed past the cycle guard")
		}
		return sm.ApplyChange(change.NewSetChange("a", change.TopicString, "loop", ""))
	})

	if err := sm.ApplyChange(change.NewSetChange("a", change.TopicString, "start", "")); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if calls != 1 {
		t.Fatalf("listener should fire exactly once, fired %d times", calls)
	}
}

func TestCycleGuardDropsTwoHopCycle(t *testing.T) {
	sm, reg := newTestMachine()
	a, _ := reg.Add("a", change.TopicString, true, false, "")
	b, _ := reg.Add("b", change.TopicString, true, false, "")

	aCalls, bCalls := 0, 0
	a.AddListener(func(c change.Change, old, new any) error {
		aCalls++
		return sm.ApplyChange(change.NewSetChange("b", change.TopicString, "from-a", ""))
	})
	b.AddListener(func(c change.Change, old, new any) error {
		bCalls++
		return sm.ApplyChange(change.NewSetChange("a", change.TopicString, "from-b", ""))
	})

	if err := sm.ApplyChange(change.NewSetChange("a", change.TopicString, "start", "")); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if aCalls != 1 || bCalls != 1 {
		t.Fatalf("expected each listener to fire once, got a=%d b=%d", aCalls, bCalls)
	}
}

func TestListenerFailurePartwayThroughCascadeFullyReverts(t *testing.T) {
	sm, reg := newTestMachine()
	a, _ := reg.Add("a", change.TopicString, true, false, "a0")
	reg.Add("b", change.TopicString, true, false, "b0")

	a.AddListener(func(c change.Change, old, new any) error {
		if err := sm.ApplyChange(change.NewSetChange("b", change.TopicString, "b1", "")); err != nil {
			return err
		}
		return sm.ApplyChange(change.NewStringInsertChange("b", "v0", 999, "boom", ""))
	})

	err := sm.Record(RecordOptions{EmitTransition: true}, func() error {
		return sm.ApplyChange(change.NewSetChange("a", change.TopicString, "a1", ""))
	})
	if err == nil {
		t.Fatal("expected failure")
	}

	bTopic, _ := reg.Get("b")
	if bTopic.Value() != "b0" {
		t.Fatalf("b should have rolled back to b0, got %v", bTopic.Value())
	}
	if a.Value() != "a0" {
		t.Fatalf("a should have rolled back to a0, got %v", a.Value())
	}
}

func TestRecordReentryPassesThroughWhenAllowed(t *testing.T) {
	sm, reg := newTestMachine()
	reg.Add("s", change.TopicString, true, false, "")

	err := sm.Record(RecordOptions{EmitTransition: true}, func() error {
		return sm.Record(RecordOptions{AllowReentry: true}, func() error {
			return sm.ApplyChange(change.NewSetChange("s", change.TopicString, "v", ""))
		})
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
}

func TestRecordRejectsNonReentrantNesting(t *testing.T) {
	sm, _ := newTestMachine()
	err := sm.Record(RecordOptions{}, func() error {
		return sm.Record(RecordOptions{}, func() error { return nil })
	})
	if err != ErrAlreadyRecording {
		t.Fatalf("got %v, want ErrAlreadyRecording", err)
	}
}
