package change

// NullChange is a no-op placeholder, filtered out of broadcast streams and
// out of the changes delivered to on_changes_made.
type NullChange struct {
	header
	topicType TopicType
}

func NewNullChange(topicName string, topicType TopicType, id string) *NullChange {
	return &NullChange{header: newHeader(topicName, id), topicType: topicType}
}

func (c *NullChange) TopicType() TopicType { return c.topicType }
func (c *NullChange) Type() string         { return "null" }

func (c *NullChange) Apply(old any) (any, error) { return old, nil }

func (c *NullChange) Inverse() Change {
	return &NullChange{header: newHeader(c.topicName, ""), topicType: c.topicType}
}

func (c *NullChange) Serialize() map[string]any {
	return serializeHeader(c)
}
