package change

// StringInsertChange inserts Text at Position in a string topic. Position
// equal to len(old) is a legal append; greater than len(old) is invalid.
// Version names the topic version this Position was computed against; the
// owning StringTopic transforms Position against whatever has been
// applied since that version before Apply ever sees it (see
// topic.StringTopic), so two inserts generated against the same snapshot
// interleave correctly regardless of application order.
type StringInsertChange struct {
	header
	Version  string
	Position int
	Text     string

	// NoTransform marks a change that must apply at its literal Position
	// with no OT adjustment. Set only by Inverse(): a rollback/undo
	// compensation is applied synchronously right after the change it
	// cancels, with nothing concurrent in between, so transforming it
	// against history would be both unnecessary and wrong (it would
	// transform against the very change it is undoing).
	NoTransform bool
}

func NewStringInsertChange(topicName, version string, position int, text, id string) *StringInsertChange {
	return &StringInsertChange{header: newHeader(topicName, id), Version: version, Position: position, Text: text}
}

func (c *StringInsertChange) TopicType() TopicType { return TopicString }
func (c *StringInsertChange) Type() string         { return "insert" }

func (c *StringInsertChange) Apply(old any) (any, error) {
	s, _ := old.(string)
	if c.Position < 0 || c.Position > len(s) {
		return nil, invalid(c, "insert position out of range")
	}
	return s[:c.Position] + c.Text + s[c.Position:], nil
}

// Inverse deletes exactly what this insert added; well-defined without
// needing to observe the pre-image since Insert's own fields fully
// describe the span it introduced.
func (c *StringInsertChange) Inverse() Change {
	return &StringDeleteChange{
		header:      newHeader(c.topicName, ""),
		Version:     c.Version,
		Position:    c.Position,
		Text:        c.Text,
		NoTransform: true,
	}
}

func (c *StringInsertChange) Serialize() map[string]any {
	out := serializeHeader(c)
	out["version"] = c.Version
	out["position"] = c.Position
	out["insertion"] = c.Text
	return out
}

func decodeStringInsert(dict map[string]any) (Change, error) {
	name, err := headerString(dict, "topic_name")
	if err != nil {
		return nil, err
	}
	pos, err := headerInt(dict, "position")
	if err != nil {
		return nil, err
	}
	text, _ := dict["insertion"].(string)
	return &StringInsertChange{
		header:   newHeader(name, optString(dict, "id")),
		Version:  optString(dict, "version"),
		Position: pos,
		Text:     text,
	}, nil
}

// StringDeleteChange deletes the literal Text starting at Position. It
// fails unless the substring at that offset matches Text exactly. Version
// and NoTransform carry the same OT meaning as on StringInsertChange.
type StringDeleteChange struct {
	header
	Version  string
	Position int
	Text     string

	NoTransform bool
}

func NewStringDeleteChange(topicName, version string, position int, text, id string) *StringDeleteChange {
	return &StringDeleteChange{header: newHeader(topicName, id), Version: version, Position: position, Text: text}
}

func (c *StringDeleteChange) TopicType() TopicType { return TopicString }
func (c *StringDeleteChange) Type() string         { return "delete" }

func (c *StringDeleteChange) Apply(old any) (any, error) {
	s, _ := old.(string)
	if c.Position < 0 || c.Position > len(s) {
		return nil, invalid(c, "delete position out of range")
	}
	end := c.Position + len(c.Text)
	if end > len(s) {
		return nil, invalid(c, "deletion extends past end of string")
	}
	if s[c.Position:end] != c.Text {
		return nil, invalid(c, "substring at position does not match deletion text")
	}
	return s[:c.Position] + s[end:], nil
}

// Inverse re-inserts the deleted text; like Insert's inverse, this is fully
// determined by the change's own fields.
func (c *StringDeleteChange) Inverse() Change {
	return &StringInsertChange{
		header:      newHeader(c.topicName, ""),
		Version:     c.Version,
		Position:    c.Position,
		Text:        c.Text,
		NoTransform: true,
	}
}

func (c *StringDeleteChange) Serialize() map[string]any {
	out := serializeHeader(c)
	out["version"] = c.Version
	out["position"] = c.Position
	out["deletion"] = c.Text
	return out
}

func decodeStringDelete(dict map[string]any) (Change, error) {
	name, err := headerString(dict, "topic_name")
	if err != nil {
		return nil, err
	}
	pos, err := headerInt(dict, "position")
	if err != nil {
		return nil, err
	}
	text, _ := dict["deletion"].(string)
	return &StringDeleteChange{
		header:   newHeader(name, optString(dict, "id")),
		Version:  optString(dict, "version"),
		Position: pos,
		Text:     text,
	}, nil
}
