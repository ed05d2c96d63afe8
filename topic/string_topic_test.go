package topic

import (
	"testing"

	"github.com/opensync/topicsync/change"
)

func newStringTopicForTest(t *testing.T, init string) *StringTopic {
	t.Helper()
	r := NewRegistry()
	tp, err := r.Add("s", change.TopicString, true, false, init)
	if err != nil {
		t.Fatalf("add string topic: %v", err)
	}
	return tp.(*StringTopic)
}

// runPairedOrder mirrors original_source/unittest/test_string_diff_change.py's
// _test_2_change_order: gen produces two changes against the same base
// version (read once, before either is applied), and applying them in
// either order against a fresh topic must reach the declared result for
// that order.
func runPairedOrder(t *testing.T, initial, result12, result21 string, gen func(version string) (change.Change, change.Change)) {
	t.Helper()

	forward := newStringTopicForTest(t, initial)
	a, b := gen(forward.Version())
	if _, _, err := forward.ApplyChange(a, false); err != nil {
		t.Fatalf("apply first change: %v", err)
	}
	if _, _, err := forward.ApplyChange(b, false); err != nil {
		t.Fatalf("apply second change: %v", err)
	}
	if got := forward.Value().(string); got != result12 {
		t.Fatalf("a then b = %q, want %q", got, result12)
	}

	reverse := newStringTopicForTest(t, initial)
	a2, b2 := gen(reverse.Version())
	if _, _, err := reverse.ApplyChange(b2, false); err != nil {
		t.Fatalf("apply second change first: %v", err)
	}
	if _, _, err := reverse.ApplyChange(a2, false); err != nil {
		t.Fatalf("apply first change second: %v", err)
	}
	if got := reverse.Value().(string); got != result21 {
		t.Fatalf("b then a = %q, want %q", got, result21)
	}
}

func TestStringInsertDistinctPositionsCommute(t *testing.T) {
	runPairedOrder(t, "abcd", "axxxxbcyyyyd", "axxxxbcyyyyd", func(v string) (change.Change, change.Change) {
		return change.NewStringInsertChange("s", v, 1, "xxxx", ""),
			change.NewStringInsertChange("s", v, 3, "yyyy", "")
	})
}

func TestStringInsertSamePositionOrdersBySubmission(t *testing.T) {
	runPairedOrder(t, "abcd", "ayyyyxxxxbcd", "axxxxyyyybcd", func(v string) (change.Change, change.Change) {
		return change.NewStringInsertChange("s", v, 1, "xxxx", ""),
			change.NewStringInsertChange("s", v, 1, "yyyy", "")
	})
}

func TestStringDeleteNonOverlapCommutes(t *testing.T) {
	runPairedOrder(t, "ayyyyxxxxbcd", "abcd", "abcd", func(v string) (change.Change, change.Change) {
		return change.NewStringDeleteChange("s", v, 1, "yyyy", ""),
			change.NewStringDeleteChange("s", v, 5, "xxxx", "")
	})
}

func TestStringDeleteSamePositionCommutes(t *testing.T) {
	runPairedOrder(t, "ayyyyxxxxbcd", "abcd", "abcd", func(v string) (change.Change, change.Change) {
		return change.NewStringDeleteChange("s", v, 1, "yyyy", ""),
			change.NewStringDeleteChange("s", v, 1, "yyyyxxxx", "")
	})
}

func TestStringDeleteIdenticalCommutes(t *testing.T) {
	runPairedOrder(t, "ayyyyxxxxbcd", "abcd", "abcd", func(v string) (change.Change, change.Change) {
		return change.NewStringDeleteChange("s", v, 1, "yyyyxxxx", ""),
			change.NewStringDeleteChange("s", v, 1, "yyyyxxxx", "")
	})
}

func TestStringDeleteOverlapCommutes(t *testing.T) {
	runPairedOrder(t, "ayyyyxxxxbcd", "abcd", "abcd", func(v string) (change.Change, change.Change) {
		return change.NewStringDeleteChange("s", v, 3, "yyxxxx", ""),
			change.NewStringDeleteChange("s", v, 1, "yyyyx", "")
	})
}

func TestStringDeleteSubsequenceCommutes(t *testing.T) {
	runPairedOrder(t, "ayyyyxxxxbcd", "abcd", "abcd", func(v string) (change.Change, change.Change) {
		return change.NewStringDeleteChange("s", v, 1, "yyyyxxxx", ""),
			change.NewStringDeleteChange("s", v, 3, "yyxx", "")
	})
}

func TestStringDeletePrefixReducesToLongerDelete(t *testing.T) {
	st := newStringTopicForTest(t, "ayyyyxxxxbcd")
	v := st.Version()
	a := change.NewStringDeleteChange("s", v, 1, "yyyy", "")
	b := change.NewStringDeleteChange("s", v, 1, "yyyyxxxx", "")

	if _, _, err := st.ApplyChange(a, false); err != nil {
		t.Fatalf("apply a: %v", err)
	}
	if _, _, err := st.ApplyChange(b, false); err != nil {
		t.Fatalf("apply b: %v", err)
	}
	if got := st.Value().(string); got != "abcd" {
		t.Fatalf("got %q, want abcd", got)
	}
}

// TestStringInsertInverseIgnoresConcurrentHistory confirms NoTransform
// keeps an undo compensation literal: applying and then undoing an
// insert must remove exactly the inserted text even though a second,
// unrelated change committed to the topic's history in between (which
// would otherwise be transformed against).
func TestStringInsertInverseIgnoresConcurrentHistory(t *testing.T) {
	st := newStringTopicForTest(t, "abcd")
	v := st.Version()

	ins := change.NewStringInsertChange("s", v, 1, "xxxx", "")
	if _, _, err := st.ApplyChange(ins, false); err != nil {
		t.Fatalf("apply insert: %v", err)
	}
	if got := st.Value().(string); got != "axxxxbcd" {
		t.Fatalf("got %q, want axxxxbcd", got)
	}

	other := change.NewStringInsertChange("s", v, 3, "zz", "")
	if _, _, err := st.ApplyChange(other, false); err != nil {
		t.Fatalf("apply other: %v", err)
	}

	inv := ins.Inverse()
	if _, _, err := st.ApplyChange(inv, false); err != nil {
		t.Fatalf("apply inverse: %v", err)
	}
	if got := st.Value().(string); got != "abczzd" {
		t.Fatalf("after undo got %q, want abczzd", got)
	}
}

// TestStringTopicDropsHistoryOnWholeValueSet confirms a whole-value
// change resets position tracking, since it invalidates every recorded
// offset.
func TestStringTopicDropsHistoryOnWholeValueSet(t *testing.T) {
	st := newStringTopicForTest(t, "abcd")
	v := st.Version()

	ins := change.NewStringInsertChange("s", v, 1, "xxxx", "")
	if _, _, err := st.ApplyChange(ins, false); err != nil {
		t.Fatalf("apply insert: %v", err)
	}

	set := change.NewSetChange("s", change.TopicString, "reset", "")
	if _, _, err := st.ApplyChange(set, false); err != nil {
		t.Fatalf("apply set: %v", err)
	}
	if len(st.history) != 0 {
		t.Fatalf("history should be cleared after a whole-value set, got %v", st.history)
	}
}
