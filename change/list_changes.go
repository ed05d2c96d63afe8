package change

// ListInsertChange inserts Value at Index; Index must be in [0, len].
type ListInsertChange struct {
	header
	Index int
	Value any
}

func NewListInsertChange(topicName string, index int, value any, id string) *ListInsertChange {
	return &ListInsertChange{header: newHeader(topicName, id), Index: index, Value: value}
}

func (c *ListInsertChange) TopicType() TopicType { return TopicList }
func (c *ListInsertChange) Type() string         { return "insert" }

func (c *ListInsertChange) Apply(old any) (any, error) {
	items, _ := old.([]any)
	if c.Index < 0 || c.Index > len(items) {
		return nil, invalid(c, "insert index out of range")
	}
	out := make([]any, 0, len(items)+1)
	out = append(out, items[:c.Index]...)
	out = append(out, c.Value)
	out = append(out, items[c.Index:]...)
	return out, nil
}

func (c *ListInsertChange) Inverse() Change {
	return &ListRemoveChange{header: newHeader(c.topicName, ""), Index: c.Index}
}

func (c *ListInsertChange) Serialize() map[string]any {
	out := serializeHeader(c)
	out["index"] = c.Index
	out["value"] = c.Value
	return out
}

func decodeListInsert(dict map[string]any) (Change, error) {
	name, err := headerString(dict, "topic_name")
	if err != nil {
		return nil, err
	}
	idx, err := headerInt(dict, "index")
	if err != nil {
		return nil, err
	}
	return &ListInsertChange{header: newHeader(name, optString(dict, "id")), Index: idx, Value: dict["value"]}, nil
}

// ListRemoveChange removes the element at Index; Index must be in
// [0, len). Apply captures the removed value for Inverse.
type ListRemoveChange struct {
	header
	Index    int
	oldValue any
}

func NewListRemoveChange(topicName string, index int, id string) *ListRemoveChange {
	return &ListRemoveChange{header: newHeader(topicName, id), Index: index}
}

func (c *ListRemoveChange) TopicType() TopicType { return TopicList }
func (c *ListRemoveChange) Type() string         { return "remove" }

func (c *ListRemoveChange) Apply(old any) (any, error) {
	items, _ := old.([]any)
	if c.Index < 0 || c.Index >= len(items) {
		return nil, invalid(c, "remove index out of range")
	}
	c.oldValue = items[c.Index]
	out := make([]any, 0, len(items)-1)
	out = append(out, items[:c.Index]...)
	out = append(out, items[c.Index+1:]...)
	return out, nil
}

func (c *ListRemoveChange) Inverse() Change {
	return &ListInsertChange{header: newHeader(c.topicName, ""), Index: c.Index, Value: c.oldValue}
}

func (c *ListRemoveChange) Serialize() map[string]any {
	out := serializeHeader(c)
	out["index"] = c.Index
	return out
}

func decodeListRemove(dict map[string]any) (Change, error) {
	name, err := headerString(dict, "topic_name")
	if err != nil {
		return nil, err
	}
	idx, err := headerInt(dict, "index")
	if err != nil {
		return nil, err
	}
	return &ListRemoveChange{header: newHeader(name, optString(dict, "id")), Index: idx}, nil
}

// ListSetChange replaces the element at Index; Index must be in [0, len).
// Apply captures the replaced value for Inverse.
type ListSetChange struct {
	header
	Index    int
	Value    any
	oldValue any
}

func NewListSetChange(topicName string, index int, value any, id string) *ListSetChange {
	return &ListSetChange{header: newHeader(topicName, id), Index: index, Value: value}
}

func (c *ListSetChange) TopicType() TopicType { return TopicList }
func (c *ListSetChange) Type() string         { return "set_at" }

func (c *ListSetChange) Apply(old any) (any, error) {
	items, _ := old.([]any)
	if c.Index < 0 || c.Index >= len(items) {
		return nil, invalid(c, "set index out of range")
	}
	c.oldValue = items[c.Index]
	out := make([]any, len(items))
	copy(out, items)
	out[c.Index] = c.Value
	return out, nil
}

func (c *ListSetChange) Inverse() Change {
	return &ListSetChange{header: newHeader(c.topicName, ""), Index: c.Index, Value: c.oldValue}
}

func (c *ListSetChange) Serialize() map[string]any {
	out := serializeHeader(c)
	out["index"] = c.Index
	out["value"] = c.Value
	return out
}

func decodeListSet(dict map[string]any) (Change, error) {
	name, err := headerString(dict, "topic_name")
	if err != nil {
		return nil, err
	}
	idx, err := headerInt(dict, "index")
	if err != nil {
		return nil, err
	}
	return &ListSetChange{header: newHeader(name, optString(dict, "id")), Index: idx, Value: dict["value"]}, nil
}
