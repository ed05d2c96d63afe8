package change

import "fmt"

// Decoder builds a Change from its wire representation.
type Decoder func(dict map[string]any) (Change, error)

var decoders = map[TopicType]map[string]Decoder{}

func register(tt TopicType, typ string, d Decoder) {
	fam, ok := decoders[tt]
	if !ok {
		fam = map[string]Decoder{}
		decoders[tt] = fam
	}
	fam[typ] = d
}

// Deserialize dispatches a wire dict to its Change variant based on the
// (topic_type, type) discriminator pair.
func Deserialize(dict map[string]any) (Change, error) {
	topicType, err := headerString(dict, "topic_type")
	if err != nil {
		return nil, err
	}
	typ, err := headerString(dict, "type")
	if err != nil {
		return nil, err
	}
	fam, ok := decoders[TopicType(topicType)]
	if !ok {
		return nil, fmt.Errorf("change: unknown topic type %q", topicType)
	}
	dec, ok := fam[typ]
	if !ok {
		return nil, fmt.Errorf("change: unknown change type %q for topic type %q", typ, topicType)
	}
	return dec(dict)
}

func allTopicTypes() []TopicType {
	return []TopicType{
		TopicString, TopicInt, TopicFloat, TopicBool,
		TopicSet, TopicList, TopicDict, TopicEvent, TopicGeneric,
	}
}

func init() {
	for _, tt := range allTopicTypes() {
		tt := tt
		register(tt, "set", func(dict map[string]any) (Change, error) {
			return decodeSetChange(tt, dict)
		})
		register(tt, "null", func(dict map[string]any) (Change, error) {
			name, err := headerString(dict, "topic_name")
			if err != nil {
				return nil, err
			}
			return &NullChange{header: newHeader(name, optString(dict, "id")), topicType: tt}, nil
		})
	}
	register(TopicString, "insert", decodeStringInsert)
	register(TopicString, "delete", decodeStringDelete)

	register(TopicSet, "append", decodeSetAppend)
	register(TopicSet, "remove", decodeSetRemove)

	register(TopicDict, "add", decodeDictAdd)
	register(TopicDict, "pop", decodeDictPop)
	register(TopicDict, "change_value", decodeDictChangeValue)

	register(TopicList, "insert", decodeListInsert)
	register(TopicList, "remove", decodeListRemove)
	register(TopicList, "set_at", decodeListSet)

	register(TopicEvent, "emit", decodeEventEmit)
	register(TopicEvent, "reversed_emit", decodeReversedEmit)
}
