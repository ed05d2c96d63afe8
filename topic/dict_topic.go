package topic

import "github.com/opensync/topicsync/change"

// DictTopic adds the on_add/on_remove convenience the façade wires
// topic_list through, per SPEC_FULL.md §4.5's meta-topic extension.
type DictTopic struct{ *base }

func newDict(name string, stateful, orderStrict bool, init any) *DictTopic {
	return &DictTopic{newTyped(name, change.TopicDict, stateful, orderStrict, change.AsDict(init))}
}

// OnAdd registers fn to run whenever a DictAddChange commits.
func (t *DictTopic) OnAdd(fn func(key string, value any) error) {
	t.AddListener(func(c change.Change, _, _ any) error {
		add, ok := c.(*change.DictAddChange)
		if !ok {
			return nil
		}
		return fn(add.Key, add.Value)
	})
}

// OnRemove registers fn to run whenever a DictPopChange commits.
func (t *DictTopic) OnRemove(fn func(key string) error) {
	t.AddListener(func(c change.Change, _, _ any) error {
		pop, ok := c.(*change.DictPopChange)
		if !ok {
			return nil
		}
		return fn(pop.Key)
	})
}

// OnChangeValue registers fn to run whenever a DictChangeValueChange commits.
func (t *DictTopic) OnChangeValue(fn func(key string, value any) error) {
	t.AddListener(func(c change.Change, _, _ any) error {
		cv, ok := c.(*change.DictChangeValueChange)
		if !ok {
			return nil
		}
		return fn(cv.Key, cv.Value)
	})
}
