package change

// SetAppendChange and SetRemoveChange mutate a set topic, modeled as an
// ordered, insertion-order-preserving slice. They are mutual inverses.
type SetAppendChange struct {
	header
	Item any
}

func NewSetAppendChange(topicName string, item any, id string) *SetAppendChange {
	return &SetAppendChange{header: newHeader(topicName, id), Item: item}
}

func (c *SetAppendChange) TopicType() TopicType { return TopicSet }
func (c *SetAppendChange) Type() string         { return "append" }

func (c *SetAppendChange) Apply(old any) (any, error) {
	items, _ := old.([]any)
	out := make([]any, len(items), len(items)+1)
	copy(out, items)
	return append(out, c.Item), nil
}

func (c *SetAppendChange) Inverse() Change {
	return &SetRemoveChange{header: newHeader(c.topicName, ""), Item: c.Item}
}

func (c *SetAppendChange) Serialize() map[string]any {
	out := serializeHeader(c)
	out["item"] = c.Item
	return out
}

func decodeSetAppend(dict map[string]any) (Change, error) {
	name, err := headerString(dict, "topic_name")
	if err != nil {
		return nil, err
	}
	return &SetAppendChange{header: newHeader(name, optString(dict, "id")), Item: dict["item"]}, nil
}

type SetRemoveChange struct {
	header
	Item any
}

func NewSetRemoveChange(topicName string, item any, id string) *SetRemoveChange {
	return &SetRemoveChange{header: newHeader(topicName, id), Item: item}
}

func (c *SetRemoveChange) TopicType() TopicType { return TopicSet }
func (c *SetRemoveChange) Type() string         { return "remove" }

func (c *SetRemoveChange) Apply(old any) (any, error) {
	items, _ := old.([]any)
	idx := -1
	for i, it := range items {
		if equalItems(it, c.Item) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, invalid(c, "item not present in set")
	}
	out := make([]any, 0, len(items)-1)
	out = append(out, items[:idx]...)
	out = append(out, items[idx+1:]...)
	return out, nil
}

func (c *SetRemoveChange) Inverse() Change {
	return &SetAppendChange{header: newHeader(c.topicName, ""), Item: c.Item}
}

func (c *SetRemoveChange) Serialize() map[string]any {
	out := serializeHeader(c)
	out["item"] = c.Item
	return out
}

func decodeSetRemove(dict map[string]any) (Change, error) {
	name, err := headerString(dict, "topic_name")
	if err != nil {
		return nil, err
	}
	return &SetRemoveChange{header: newHeader(name, optString(dict, "id")), Item: dict["item"]}, nil
}

func equalItems(a, b any) bool {
	return a == b
}
