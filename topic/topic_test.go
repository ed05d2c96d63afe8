package topic

import (
	"testing"

	"github.com/opensync/topicsync/change"
)

func TestRegistryAddGetRemove(t *testing.T) {
	r := NewRegistry()
	tp, err := r.Add("name", change.TopicString, true, false, nil)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tp.Value() != "" {
		t.Fatalf("default value = %v, want empty string", tp.Value())
	}
	if _, err := r.Add("name", change.TopicString, true, false, nil); err == nil {
		t.Fatal("expected error on duplicate add")
	}
	if !r.Has("name") {
		t.Fatal("expected Has to report true")
	}
	if err := r.Remove("name"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := r.Remove("name"); err == nil {
		t.Fatal("expected error removing absent topic")
	}
}

func TestApplyChangeCommitsAndBumpsVersion(t *testing.T) {
	r := NewRegistry()
	tp, _ := r.Add("s", change.TopicString, true, false, "hello")
	c := change.NewStringInsertChange("s", "v0", 5, " world", "")
	before := tp.Version()
	old, new, err := tp.ApplyChange(c, false)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if old != "hello" || new != "hello world" {
		t.Fatalf("got old=%v new=%v", old, new)
	}
	if tp.Value() != "hello world" {
		t.Fatalf("value not committed: %v", tp.Value())
	}
	if tp.Version() == before {
		t.Fatal("version did not advance")
	}
}

func TestInvalidChangeDoesNotCommit(t *testing.T) {
	r := NewRegistry()
	tp, _ := r.Add("s", change.TopicString, true, false, "abc")
	c := change.NewStringInsertChange("s", "v0", 99, "x", "")
	if _, _, err := tp.ApplyChange(c, false); err == nil {
		t.Fatal("expected error")
	}
	if tp.Value() != "abc" {
		t.Fatalf("value should be unchanged, got %v", tp.Value())
	}
}

func TestDictOnAddOnRemoveFire(t *testing.T) {
	r := NewRegistry()
	tp, _ := r.Add("topic_list", change.TopicDict, true, false, nil)
	dt := tp.(*DictTopic)

	var added, removed string
	dt.OnAdd(func(key string, value any) error { added = key; return nil })
	dt.OnRemove(func(key string) error { removed = key; return nil })

	addChange := change.NewDictAddChange("topic_list", "foo", map[string]any{"type": "string"}, "")
	old, new, err := dt.ApplyChange(addChange, true)
	if err != nil {
		t.Fatalf("apply add: %v", err)
	}
	_ = old
	_ = new
	if added != "foo" {
		t.Fatalf("OnAdd did not fire, got %q", added)
	}

	popChange := change.NewDictPopChange("topic_list", "foo", "")
	if _, _, err := dt.ApplyChange(popChange, true); err != nil {
		t.Fatalf("apply pop: %v", err)
	}
	if removed != "foo" {
		t.Fatalf("OnRemove did not fire, got %q", removed)
	}
}
