package change

import "testing"

func applyStr(t *testing.T, init string, c Change) string {
	t.Helper()
	v, err := c.Apply(init)
	if err != nil {
		t.Fatalf("apply %v failed: %v", c.Type(), err)
	}
	return v.(string)
}

// Paired-order interleaving scenarios (spec §8, scenarios 1-4) need a
// shared-history StringTopic to transform against — they live in
// topic/string_topic_test.go, which exercises StringTopic.ApplyChange
// rather than Apply directly.

func TestStringInsertAtPositionGreaterThanLengthIsInvalid(t *testing.T) {
	c := NewStringInsertChange("s", "0", 4, "abcd", "")
	if _, err := c.Apply("ddd"); err == nil {
		t.Fatal("expected InvalidChangeError, got nil")
	}
}

func TestStringInsertPositionLessThanZeroIsInvalid(t *testing.T) {
	c := NewStringInsertChange("s", "0", -5, "abcd", "")
	if _, err := c.Apply("ddd"); err == nil {
		t.Fatal("expected InvalidChangeError, got nil")
	}
}

func TestStringDeleteEmptyAtLengthIsNoop(t *testing.T) {
	c := NewStringDeleteChange("s", "0", 3, "", "")
	v := applyStr(t, "ddd", c)
	if v != "ddd" {
		t.Fatalf("got %q, want ddd", v)
	}
}

func TestStringDeleteLastPositionNonemptyIsInvalid(t *testing.T) {
	c := NewStringDeleteChange("s", "0", 3, "d", "")
	if _, err := c.Apply("ddd"); err == nil {
		t.Fatal("expected InvalidChangeError, got nil")
	}
}

func TestStringDeleteSubstringMismatchIsInvalid(t *testing.T) {
	c := NewStringDeleteChange("s", "0", 0, "cd", "")
	if _, err := c.Apply("abcd"); err == nil {
		t.Fatal("expected InvalidChangeError, got nil")
	}
}

func TestStringDeletePositionGreaterThanLengthIsInvalid(t *testing.T) {
	c := NewStringDeleteChange("s", "0", 4, "abcd", "")
	if _, err := c.Apply("ddd"); err == nil {
		t.Fatal("expected InvalidChangeError, got nil")
	}
}

func TestStringDeletePositionLessThanZeroIsInvalid(t *testing.T) {
	c := NewStringDeleteChange("s", "0", -2, "d", "")
	if _, err := c.Apply("ddd"); err == nil {
		t.Fatal("expected InvalidChangeError, got nil")
	}
}

func TestStringInsertInverseDeletesWhatWasInserted(t *testing.T) {
	c := NewStringInsertChange("s", "0", 1, "xxxx", "")
	v := applyStr(t, "abcd", c)
	inv := c.Inverse()
	back, err := inv.Apply(v)
	if err != nil {
		t.Fatalf("inverse apply failed: %v", err)
	}
	if back.(string) != "abcd" {
		t.Fatalf("got %q, want abcd", back)
	}
}

func TestStringDeleteInverseReinsertsWhatWasDeleted(t *testing.T) {
	c := NewStringDeleteChange("s", "0", 2, "cd", "")
	v := applyStr(t, "abcd", c)
	if v != "ab" {
		t.Fatalf("got %q, want ab", v)
	}
	inv := c.Inverse()
	back, err := inv.Apply(v)
	if err != nil {
		t.Fatalf("inverse apply failed: %v", err)
	}
	if back.(string) != "abcd" {
		t.Fatalf("got %q, want abcd", back)
	}
}
