package topic

import (
	"fmt"

	"github.com/opensync/topicsync/change"
)

// Registry holds the name-to-topic mapping. Topic names are unique within
// a registry.
type Registry struct {
	topics map[string]Topic
}

func NewRegistry() *Registry {
	return &Registry{topics: map[string]Topic{}}
}

// Add creates a topic of the given type tag; it fails on a duplicate name.
func (r *Registry) Add(name string, tt change.TopicType, stateful, orderStrict bool, init any) (Topic, error) {
	if _, exists := r.topics[name]; exists {
		return nil, fmt.Errorf("topic: %q already exists", name)
	}
	var t Topic
	switch tt {
	case change.TopicString:
		t = newString(name, stateful, init)
	case change.TopicInt:
		t = newInt(name, stateful, init)
	case change.TopicFloat:
		t = newFloat(name, stateful, init)
	case change.TopicBool:
		t = newBool(name, stateful, init)
	case change.TopicSet:
		t = newSet(name, stateful, init)
	case change.TopicList:
		t = newList(name, stateful, orderStrict, init)
	case change.TopicDict:
		t = newDict(name, stateful, orderStrict, init)
	case change.TopicEvent:
		t = newEvent(name)
	case change.TopicGeneric:
		t = newGeneric(name, stateful, init)
	default:
		return nil, fmt.Errorf("topic: unknown type tag %q", tt)
	}
	r.topics[name] = t
	return t, nil
}

// Remove deletes a topic; it fails when absent.
func (r *Registry) Remove(name string) error {
	if _, exists := r.topics[name]; !exists {
		return fmt.Errorf("topic: %q does not exist", name)
	}
	delete(r.topics, name)
	return nil
}

func (r *Registry) Get(name string) (Topic, bool) {
	t, ok := r.topics[name]
	return t, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.topics[name]
	return ok
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.topics))
	for n := range r.topics {
		out = append(out, n)
	}
	return out
}
