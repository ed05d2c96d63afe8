package topic

import "github.com/opensync/topicsync/change"

// EventTopic is non-stateful: it stores no value and is treated as a
// notification channel, per spec.md §3.
type EventTopic struct{ *base }

func newEvent(name string) *EventTopic {
	return &EventTopic{newBase(name, change.TopicEvent, false, false, nil)}
}

// OnEmit registers fn to run whenever an EventEmitChange is notified.
func (t *EventTopic) OnEmit(fn func(args map[string]any) error) {
	t.AddListener(func(c change.Change, _, _ any) error {
		emit, ok := c.(*change.EventEmitChange)
		if !ok {
			return nil
		}
		return fn(emit.Args)
	})
}

// OnReverse registers fn to run whenever a ReversedEmitChange is notified —
// this is what lets undo of a stateful event replay its inverse callback.
func (t *EventTopic) OnReverse(fn func(args map[string]any) error) {
	t.AddListener(func(c change.Change, _, _ any) error {
		rev, ok := c.(*change.ReversedEmitChange)
		if !ok {
			return nil
		}
		return fn(rev.Args)
	})
}
