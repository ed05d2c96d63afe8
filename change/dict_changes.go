package change

import orderedmap "github.com/wk8/go-ordered-map/v2"

// Dict is the value a dict topic holds. Backing it with an
// insertion-order-preserving map (rather than a plain Go map) is what
// lets an order_strict dict topic keep the guarantee spec.md §4.1
// requires: "must preserve insertion order where the topic type declares
// it." Non-order-strict dict topics use the same type; order_strict only
// governs whether callers rely on that order, not whether it's kept.
type Dict = orderedmap.OrderedMap[string, any]

// NewDict returns an empty Dict, the zero value a freshly added dict
// topic is seeded with.
func NewDict() *Dict {
	return orderedmap.New[string, any]()
}

// copyDict returns a new Dict holding the same entries as d in the same
// order, for copy-on-write Apply. A nil d yields an empty Dict.
func copyDict(d *Dict) *Dict {
	out := NewDict()
	if d == nil {
		return out
	}
	for pair := d.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

// AsDict normalizes a dict topic's initial value to *Dict regardless of
// how it arrived. A topic re-created from an in-process boundary_value
// (server.RemoveTopic's snapshot) already carries a *Dict; one supplied
// from a freshly decoded wire message carries a plain map[string]any
// (encoding/json has no ordered-object mode), in which case order falls
// back to Go's unspecified map iteration order — no worse than the
// order information actually present in that source.
func AsDict(v any) *Dict {
	switch d := v.(type) {
	case *Dict:
		return d
	case map[string]any:
		out := NewDict()
		for k, val := range d {
			out.Set(k, val)
		}
		return out
	default:
		return NewDict()
	}
}

// DictAddChange inserts Key into a dict topic; it fails if Key already
// exists. Its inverse is a DictPopChange for the same key.
type DictAddChange struct {
	header
	Key   string
	Value any
}

func NewDictAddChange(topicName, key string, value any, id string) *DictAddChange {
	return &DictAddChange{header: newHeader(topicName, id), Key: key, Value: value}
}

func (c *DictAddChange) TopicType() TopicType { return TopicDict }
func (c *DictAddChange) Type() string         { return "add" }

func (c *DictAddChange) Apply(old any) (any, error) {
	d, _ := old.(*Dict)
	if d != nil {
		if _, exists := d.Get(c.Key); exists {
			return nil, invalid(c, "key already present")
		}
	}
	out := copyDict(d)
	out.Set(c.Key, c.Value)
	return out, nil
}

func (c *DictAddChange) Inverse() Change {
	return &DictPopChange{header: newHeader(c.topicName, ""), Key: c.Key}
}

func (c *DictAddChange) Serialize() map[string]any {
	out := serializeHeader(c)
	out["key"] = c.Key
	out["value"] = c.Value
	return out
}

func decodeDictAdd(dict map[string]any) (Change, error) {
	name, err := headerString(dict, "topic_name")
	if err != nil {
		return nil, err
	}
	key, err := headerString(dict, "key")
	if err != nil {
		return nil, err
	}
	return &DictAddChange{header: newHeader(name, optString(dict, "id")), Key: key, Value: dict["value"]}, nil
}

// DictPopChange deletes Key; it fails if Key is absent. Apply captures the
// removed value so that Inverse (a DictAddChange) can restore it.
type DictPopChange struct {
	header
	Key      string
	oldValue any
}

func NewDictPopChange(topicName, key, id string) *DictPopChange {
	return &DictPopChange{header: newHeader(topicName, id), Key: key}
}

func (c *DictPopChange) TopicType() TopicType { return TopicDict }
func (c *DictPopChange) Type() string         { return "pop" }

func (c *DictPopChange) Apply(old any) (any, error) {
	d, _ := old.(*Dict)
	if d == nil {
		return nil, invalid(c, "key not present")
	}
	v, exists := d.Get(c.Key)
	if !exists {
		return nil, invalid(c, "key not present")
	}
	c.oldValue = v
	out := copyDict(d)
	out.Delete(c.Key)
	return out, nil
}

func (c *DictPopChange) Inverse() Change {
	return &DictAddChange{header: newHeader(c.topicName, ""), Key: c.Key, Value: c.oldValue}
}

func (c *DictPopChange) Serialize() map[string]any {
	out := serializeHeader(c)
	out["key"] = c.Key
	return out
}

func decodeDictPop(dict map[string]any) (Change, error) {
	name, err := headerString(dict, "topic_name")
	if err != nil {
		return nil, err
	}
	key, err := headerString(dict, "key")
	if err != nil {
		return nil, err
	}
	return &DictPopChange{header: newHeader(name, optString(dict, "id")), Key: key}, nil
}

// DictChangeValueChange replaces the value at Key; it fails if Key is
// absent. Inverse is another DictChangeValueChange restoring the prior
// value.
type DictChangeValueChange struct {
	header
	Key      string
	Value    any
	oldValue any
}

func NewDictChangeValueChange(topicName, key string, value any, id string) *DictChangeValueChange {
	return &DictChangeValueChange{header: newHeader(topicName, id), Key: key, Value: value}
}

func (c *DictChangeValueChange) TopicType() TopicType { return TopicDict }
func (c *DictChangeValueChange) Type() string         { return "change_value" }

func (c *DictChangeValueChange) Apply(old any) (any, error) {
	d, _ := old.(*Dict)
	if d == nil {
		return nil, invalid(c, "key not present")
	}
	v, exists := d.Get(c.Key)
	if !exists {
		return nil, invalid(c, "key not present")
	}
	c.oldValue = v
	out := copyDict(d)
	out.Set(c.Key, c.Value)
	return out, nil
}

func (c *DictChangeValueChange) Inverse() Change {
	return &DictChangeValueChange{header: newHeader(c.topicName, ""), Key: c.Key, Value: c.oldValue}
}

func (c *DictChangeValueChange) Serialize() map[string]any {
	out := serializeHeader(c)
	out["key"] = c.Key
	out["value"] = c.Value
	return out
}

func decodeDictChangeValue(dict map[string]any) (Change, error) {
	name, err := headerString(dict, "topic_name")
	if err != nil {
		return nil, err
	}
	key, err := headerString(dict, "key")
	if err != nil {
		return nil, err
	}
	return &DictChangeValueChange{header: newHeader(name, optString(dict, "id")), Key: key, Value: dict["value"]}, nil
}
