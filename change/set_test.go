package change

import "testing"

func TestSetAppendRemoveAreInverses(t *testing.T) {
	app := NewSetAppendChange("s", "x", "")
	v, err := app.Apply([]any{"a"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	items := v.([]any)
	if len(items) != 2 || items[1] != "x" {
		t.Fatalf("got %v", items)
	}

	rm := app.Inverse().(*SetRemoveChange)
	v2, err := rm.Apply(items)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	back := v2.([]any)
	if len(back) != 1 || back[0] != "a" {
		t.Fatalf("got %v", back)
	}
}

func TestSetRemoveFailsWhenAbsent(t *testing.T) {
	rm := NewSetRemoveChange("s", "missing", "")
	if _, err := rm.Apply([]any{"a"}); err == nil {
		t.Fatal("expected error")
	}
}
