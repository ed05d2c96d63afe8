// Package change defines the catalog of invertible, serializable mutations
// that the topic state machine applies to topics. Every variant implements
// apply/inverse/serialize; deserialization dispatches on the wire pair
// (topic_type, type) through a closed, two-level registry.
package change

import (
	"fmt"

	"github.com/google/uuid"
)

// TopicType is the closed set of type tags a topic can carry.
type TopicType string

const (
	TopicString  TopicType = "string"
	TopicInt     TopicType = "int"
	TopicFloat   TopicType = "float"
	TopicBool    TopicType = "bool"
	TopicSet     TopicType = "set"
	TopicList    TopicType = "list"
	TopicDict    TopicType = "dict"
	TopicEvent   TopicType = "event"
	TopicGeneric TopicType = "generic"
)

// Change is the capability set every variant implements. Apply is pure with
// respect to its inputs but may record the observed pre-image on the
// receiver so that Inverse is well-defined afterwards.
type Change interface {
	ID() string
	TopicName() string
	TopicType() TopicType
	Type() string
	Apply(old any) (any, error)
	Inverse() Change
	Serialize() map[string]any
}

// header holds the fields common to every change variant.
type header struct {
	id        string
	topicName string
}

func newHeader(topicName, id string) header {
	if id == "" {
		id = uuid.NewString()
	}
	return header{id: id, topicName: topicName}
}

func (h header) ID() string        { return h.id }
func (h header) TopicName() string { return h.topicName }

func headerString(dict map[string]any, key string) (string, error) {
	v, ok := dict[key]
	if !ok {
		return "", fmt.Errorf("change: missing field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("change: field %q is not a string", key)
	}
	return s, nil
}

func headerInt(dict map[string]any, key string) (int, error) {
	v, ok := dict[key]
	if !ok {
		return 0, fmt.Errorf("change: missing field %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("change: field %q is not a number", key)
	}
}

func optString(dict map[string]any, key string) string {
	if v, ok := dict[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func serializeHeader(c Change) map[string]any {
	return map[string]any{
		"id":         c.ID(),
		"topic_name": c.TopicName(),
		"topic_type": string(c.TopicType()),
		"type":       c.Type(),
	}
}
