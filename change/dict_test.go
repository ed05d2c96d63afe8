package change

import "testing"

func TestDictAddPopAreInverses(t *testing.T) {
	add := NewDictAddChange("d", "k", "v", "")
	v, err := add.Apply(NewDict())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	d := v.(*Dict)
	if got, _ := d.Get("k"); got != "v" {
		t.Fatalf("got %v", got)
	}

	pop := add.Inverse().(*DictPopChange)
	v2, err := pop.Apply(d)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if _, exists := v2.(*Dict).Get("k"); exists {
		t.Fatal("key should be gone")
	}

	back := pop.Inverse().(*DictAddChange)
	if back.Value != "v" {
		t.Fatalf("inverse of pop should restore value, got %v", back.Value)
	}
}

func TestDictAddFailsOnDuplicate(t *testing.T) {
	add := NewDictAddChange("d", "k", "v", "")
	existing := NewDict()
	existing.Set("k", "old")
	if _, err := add.Apply(existing); err == nil {
		t.Fatal("expected error on duplicate key")
	}
}

func TestDictPopFailsOnMissing(t *testing.T) {
	pop := NewDictPopChange("d", "missing", "")
	if _, err := pop.Apply(NewDict()); err == nil {
		t.Fatal("expected error on missing key")
	}
}

func TestDictChangeValueRoundTrips(t *testing.T) {
	cv := NewDictChangeValueChange("d", "k", "new", "")
	existing := NewDict()
	existing.Set("k", "old")
	v, err := cv.Apply(existing)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, _ := v.(*Dict).Get("k"); got != "new" {
		t.Fatalf("got %v", got)
	}
	inv := cv.Inverse().(*DictChangeValueChange)
	back, err := inv.Apply(v)
	if err != nil {
		t.Fatalf("inverse apply: %v", err)
	}
	if got, _ := back.(*Dict).Get("k"); got != "old" {
		t.Fatalf("got %v, want old restored", got)
	}
}

func TestDictAddPreservesInsertionOrder(t *testing.T) {
	d := NewDict()
	add1 := NewDictAddChange("d", "first", 1, "")
	v, err := add1.Apply(d)
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	add2 := NewDictAddChange("d", "second", 2, "")
	v, err = add2.Apply(v.(*Dict))
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	add3 := NewDictAddChange("d", "third", 3, "")
	v, err = add3.Apply(v.(*Dict))
	if err != nil {
		t.Fatalf("add third: %v", err)
	}

	var keys []string
	for pair := v.(*Dict).Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	want := []string{"first", "second", "third"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}
