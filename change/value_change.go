package change

// SetChange replaces a topic's whole value. It is generic across every
// topic type; the wire shape still carries topic_type so a receiver can
// validate it against the topic it names without consulting the registry.
type SetChange struct {
	header
	topicType TopicType
	Value     any
	oldValue  any
	applied   bool
}

func NewSetChange(topicName string, topicType TopicType, value any, id string) *SetChange {
	return &SetChange{header: newHeader(topicName, id), topicType: topicType, Value: value}
}

func (c *SetChange) TopicType() TopicType { return c.topicType }
func (c *SetChange) Type() string         { return "set" }

func (c *SetChange) Apply(old any) (any, error) {
	c.oldValue = old
	c.applied = true
	return c.Value, nil
}

func (c *SetChange) Inverse() Change {
	return &SetChange{
		header:    newHeader(c.topicName, ""),
		topicType: c.topicType,
		Value:     c.oldValue,
	}
}

func (c *SetChange) Serialize() map[string]any {
	out := serializeHeader(c)
	out["value"] = c.Value
	out["old_value"] = c.oldValue
	return out
}

func decodeSetChange(tt TopicType, dict map[string]any) (Change, error) {
	name, err := headerString(dict, "topic_name")
	if err != nil {
		return nil, err
	}
	return &SetChange{
		header:    newHeader(name, optString(dict, "id")),
		topicType: tt,
		Value:     normalizeWireValue(tt, dict["value"]),
		oldValue:  normalizeWireValue(tt, dict["old_value"]),
	}, nil
}

// normalizeWireValue undoes encoding/json's float64-for-every-number
// default so a decoded int topic's value round-trips as an int rather
// than tripping TypeValidator after a wire hop. Other type tags pass
// through unchanged; JSON already decodes strings, bools, arrays, and
// objects into the Go shapes their validators expect.
func normalizeWireValue(tt TopicType, v any) any {
	if tt != TopicInt {
		return v
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return v
	}
}
