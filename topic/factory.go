package topic

import "github.com/opensync/topicsync/change"

// One thin concrete wrapper per type tag, per §9's "interface/trait with
// one concrete per type tag." Each just installs the default validator and
// (for dict/event) adds convenience registration helpers. StringTopic and
// DictTopic have their own files (string_topic.go, dict_topic.go) since
// they carry more than a bare *base.

type IntTopic struct{ *base }
type FloatTopic struct{ *base }
type BoolTopic struct{ *base }
type SetTopic struct{ *base }
type ListTopic struct{ *base }
type GenericTopic struct{ *base }

func newTyped(name string, tt change.TopicType, stateful, orderStrict bool, init any) *base {
	if init == nil {
		init = DefaultValue(tt)
	}
	b := newBase(name, tt, stateful, orderStrict, init)
	if tt != change.TopicGeneric && tt != change.TopicEvent {
		b.AddValidator(TypeValidator(tt))
	}
	return b
}

func newInt(name string, stateful bool, init any) *IntTopic {
	return &IntTopic{newTyped(name, change.TopicInt, stateful, false, init)}
}
func newFloat(name string, stateful bool, init any) *FloatTopic {
	return &FloatTopic{newTyped(name, change.TopicFloat, stateful, false, init)}
}
func newBool(name string, stateful bool, init any) *BoolTopic {
	return &BoolTopic{newTyped(name, change.TopicBool, stateful, false, init)}
}
func newSet(name string, stateful bool, init any) *SetTopic {
	return &SetTopic{newTyped(name, change.TopicSet, stateful, false, init)}
}
func newList(name string, stateful, orderStrict bool, init any) *ListTopic {
	return &ListTopic{newTyped(name, change.TopicList, stateful, orderStrict, init)}
}
func newGeneric(name string, stateful bool, init any) *GenericTopic {
	return &GenericTopic{newTyped(name, change.TopicGeneric, stateful, false, init)}
}
