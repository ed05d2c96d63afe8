package change

// EventEmitChange and ReversedEmitChange never mutate a topic's value; they
// carry listener arguments through the apply/notify path so that emitting
// an event still participates in the transition tree and can be undone by
// replaying the reverse callback.
type EventEmitChange struct {
	header
	Args map[string]any
}

func NewEventEmitChange(topicName string, args map[string]any, id string) *EventEmitChange {
	return &EventEmitChange{header: newHeader(topicName, id), Args: args}
}

func (c *EventEmitChange) TopicType() TopicType { return TopicEvent }
func (c *EventEmitChange) Type() string         { return "emit" }

func (c *EventEmitChange) Apply(old any) (any, error) { return old, nil }

func (c *EventEmitChange) Inverse() Change {
	return &ReversedEmitChange{header: newHeader(c.topicName, ""), Args: c.Args}
}

func (c *EventEmitChange) Serialize() map[string]any {
	out := serializeHeader(c)
	out["args"] = c.Args
	return out
}

func decodeEventEmit(dict map[string]any) (Change, error) {
	name, err := headerString(dict, "topic_name")
	if err != nil {
		return nil, err
	}
	args, _ := dict["args"].(map[string]any)
	return &EventEmitChange{header: newHeader(name, optString(dict, "id")), Args: args}, nil
}

type ReversedEmitChange struct {
	header
	Args map[string]any
}

func NewReversedEmitChange(topicName string, args map[string]any, id string) *ReversedEmitChange {
	return &ReversedEmitChange{header: newHeader(topicName, id), Args: args}
}

func (c *ReversedEmitChange) TopicType() TopicType { return TopicEvent }
func (c *ReversedEmitChange) Type() string         { return "reversed_emit" }

func (c *ReversedEmitChange) Apply(old any) (any, error) { return old, nil }

func (c *ReversedEmitChange) Inverse() Change {
	return &EventEmitChange{header: newHeader(c.topicName, ""), Args: c.Args}
}

func (c *ReversedEmitChange) Serialize() map[string]any {
	out := serializeHeader(c)
	out["args"] = c.Args
	return out
}

func decodeReversedEmit(dict map[string]any) (Change, error) {
	name, err := headerString(dict, "topic_name")
	if err != nil {
		return nil, err
	}
	args, _ := dict["args"].(map[string]any)
	return &ReversedEmitChange{header: newHeader(name, optString(dict, "id")), Args: args}, nil
}
