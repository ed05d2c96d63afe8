package topic

import (
	"strconv"
	"sync/atomic"

	"github.com/opensync/topicsync/change"
)

// StringTopic holds a string value and position-transforms incoming
// insert/delete changes against whatever has been applied since the
// version the change was generated from, so edits composed concurrently
// against an older snapshot still interleave correctly once they arrive
// in sequence — spec.md §4.1's "changes that must behave well when
// interleaved." No retrieved original implementation covers this path
// (original_source/topic_change.py has no StringTopic.apply_change), so
// the transform rules here are derived directly from the paired-order
// scenarios in original_source/unittest/test_string_diff_change.py.
//
// The state machine applies changes to one topic from a single goroutine
// at a time (§5), so history is read and appended without its own lock.
type StringTopic struct {
	*base
	history []stringOp
}

// stringOp is one committed insert or delete, kept so a later change
// declaring an older base Version can be transformed against it.
type stringOp struct {
	version  uint64
	position int
	text     string
	isInsert bool
}

func newString(name string, stateful bool, init any) *StringTopic {
	return &StringTopic{base: newTyped(name, change.TopicString, stateful, false, init)}
}

// ApplyChange transforms StringInsertChange/StringDeleteChange positions
// against history recorded since the change's declared Version, then
// delegates to base.ApplyChange and records the (possibly adjusted)
// operation. Any other change (e.g. a whole-value SetChange) invalidates
// position tracking entirely, so history is dropped on commit.
func (t *StringTopic) ApplyChange(c change.Change, notify bool) (old, new any, err error) {
	switch op := c.(type) {
	case *change.StringInsertChange:
		if !op.NoTransform {
			t.transformInsert(op)
		}
		old, new, err = t.base.ApplyChange(op, notify)
		if err == nil {
			t.history = append(t.history, stringOp{version: t.versionUint(), position: op.Position, text: op.Text, isInsert: true})
		}
		return old, new, err
	case *change.StringDeleteChange:
		if !op.NoTransform {
			t.transformDelete(op)
		}
		old, new, err = t.base.ApplyChange(op, notify)
		if err == nil {
			t.history = append(t.history, stringOp{version: t.versionUint(), position: op.Position, text: op.Text, isInsert: false})
		}
		return old, new, err
	default:
		old, new, err = t.base.ApplyChange(c, notify)
		if err == nil {
			t.history = nil
		}
		return old, new, err
	}
}

func (t *StringTopic) versionUint() uint64 { return atomic.LoadUint64(&t.base.version) }

// sinceVersion returns the ops committed strictly after v, oldest first.
func (t *StringTopic) sinceVersion(v uint64) []stringOp {
	for i, op := range t.history {
		if op.version > v {
			return t.history[i:]
		}
	}
	return nil
}

func (t *StringTopic) transformInsert(c *change.StringInsertChange) {
	base, ok := parseVersion(c.Version)
	if !ok {
		return
	}
	for _, op := range t.sinceVersion(base) {
		if op.isInsert {
			c.Position = transformInsertAgainstInsert(c.Position, op.position, len(op.text))
		} else {
			c.Position = transformInsertAgainstDelete(c.Position, op.position, len(op.text))
		}
	}
}

func (t *StringTopic) transformDelete(c *change.StringDeleteChange) {
	base, ok := parseVersion(c.Version)
	if !ok {
		return
	}
	for _, op := range t.sinceVersion(base) {
		if op.isInsert {
			c.Position, c.Text = transformDeleteAgainstInsert(c.Position, c.Text, op.position, op.text)
		} else {
			c.Position, c.Text = transformDeleteAgainstDelete(c.Position, c.Text, op.position, op.text)
		}
	}
}

func parseVersion(v string) (uint64, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// transformInsertAgainstInsert adjusts an insert's position for an
// already-applied insert at otherPos of otherLen chars: a position strictly
// after otherPos shifts right by otherLen; a position equal to otherPos
// stays put, so the later insert lands before the earlier one.
func transformInsertAgainstInsert(pos, otherPos, otherLen int) int {
	if otherPos < pos {
		return pos + otherLen
	}
	return pos
}

// transformInsertAgainstDelete adjusts an insert's position for an
// already-applied delete spanning [otherPos, otherPos+otherLen). A
// position inside the deleted span collapses to otherPos.
func transformInsertAgainstDelete(pos, otherPos, otherLen int) int {
	otherEnd := otherPos + otherLen
	switch {
	case pos <= otherPos:
		return pos
	case pos >= otherEnd:
		return pos - otherLen
	default:
		return otherPos
	}
}

// transformDeleteAgainstInsert adjusts a pending delete for an
// already-applied insert. An insert landing inside the delete's span is
// folded into the delete's Text so the delete still removes it; this is
// a deliberate simplification for a case the test suite leaves untested
// (see DESIGN.md).
func transformDeleteAgainstInsert(pos int, text string, otherPos int, otherText string) (int, string) {
	cStart, cEnd := pos, pos+len(text)
	switch {
	case otherPos <= cStart:
		return pos + len(otherText), text
	case otherPos >= cEnd:
		return pos, text
	default:
		i := otherPos - cStart
		return pos, text[:i] + otherText + text[i:]
	}
}

// transformDeleteAgainstDelete adjusts a pending delete for an
// already-applied delete, shrinking its Text by whatever portion the
// other delete already removed and shifting its position by whatever
// fell strictly before it.
func transformDeleteAgainstDelete(pos int, text string, otherPos int, otherText string) (int, string) {
	cStart, cEnd := pos, pos+len(text)
	otherStart, otherLen := otherPos, len(otherText)
	otherEnd := otherStart + otherLen

	newPos := cStart - shiftAt(cStart, otherStart, otherEnd, otherLen)
	overlapStart := max(cStart, otherStart)
	overlapEnd := min(cEnd, otherEnd)
	if overlapStart >= overlapEnd {
		return newPos, text
	}
	prefix := text[:overlapStart-cStart]
	suffix := text[overlapEnd-cStart:]
	return newPos, prefix + suffix
}

// shiftAt returns how much a position x shifts left because of an
// already-applied delete spanning [otherStart, otherEnd).
func shiftAt(x, otherStart, otherEnd, otherLen int) int {
	switch {
	case x <= otherStart:
		return 0
	case x >= otherEnd:
		return otherLen
	default:
		return x - otherStart
	}
}
