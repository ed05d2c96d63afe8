// Package topic implements the named, typed cells the state machine
// mutates: one concrete type per topic type tag, sharing the capability
// set {ApplyChange, NotifyListeners, Value, IsStateful, TypeTag}.
package topic

import (
	"strconv"
	"sync/atomic"

	"github.com/opensync/topicsync/change"
)

// Listener observes a successfully applied change.
type Listener func(c change.Change, old, new any) error

// Validator rejects a change/new-value pair before it is committed.
type Validator func(old, new any, c change.Change) bool

// Topic is the shared capability set every concrete topic type implements.
type Topic interface {
	Name() string
	TypeTag() change.TopicType
	IsStateful() bool
	OrderStrict() bool
	Version() string
	Value() any
	AddValidator(Validator)
	AddListener(Listener)
	Listeners() []Listener
	ApplyChange(c change.Change, notify bool) (old, new any, err error)
	NotifyListeners(c change.Change, old, new any) error
}

// base implements Topic and is embedded by every concrete per-tag type.
type base struct {
	name        string
	typeTag     change.TopicType
	stateful    bool
	orderStrict bool
	value       any
	version     uint64
	validators  []Validator
	listeners   []Listener
}

func newBase(name string, tt change.TopicType, stateful, orderStrict bool, init any) *base {
	return &base{name: name, typeTag: tt, stateful: stateful, orderStrict: orderStrict, value: init}
}

func (b *base) Name() string             { return b.name }
func (b *base) TypeTag() change.TopicType { return b.typeTag }
func (b *base) IsStateful() bool         { return b.stateful }
func (b *base) OrderStrict() bool        { return b.orderStrict }
func (b *base) Value() any               { return b.value }
func (b *base) Version() string          { return strconv.FormatUint(atomic.LoadUint64(&b.version), 10) }

func (b *base) AddValidator(v Validator) { b.validators = append(b.validators, v) }
func (b *base) AddListener(l Listener)   { b.listeners = append(b.listeners, l) }
func (b *base) Listeners() []Listener    { return b.listeners }

// ApplyChange validates the change against the topic's validators, runs
// Apply, and — only if both succeed — commits the new value and bumps the
// version. Non-stateful topics skip value storage entirely.
func (b *base) ApplyChange(c change.Change, notify bool) (old, new any, err error) {
	old = b.value
	newVal, err := c.Apply(b.value)
	if err != nil {
		return old, nil, err
	}
	if b.stateful {
		for _, v := range b.validators {
			if !v(old, newVal, c) {
				return old, nil, &change.InvalidChangeError{TopicName: b.name, Change: c, Reason: "validator rejected new value"}
			}
		}
		b.value = newVal
		b.version++
	}
	if notify {
		if err := b.NotifyListeners(c, old, newVal); err != nil {
			return old, newVal, err
		}
	}
	return old, newVal, nil
}

// NotifyListeners invokes listeners in registration order. A listener
// error propagates immediately — later listeners in the list do not run.
func (b *base) NotifyListeners(c change.Change, old, new any) error {
	for _, l := range b.listeners {
		if err := l(c, old, new); err != nil {
			return err
		}
	}
	return nil
}

// TypeValidator rejects a new value whose Go dynamic type doesn't match
// what the topic's type tag expects. Installed by default on every topic
// created through Registry.Add, mirroring the original's type_validator.
func TypeValidator(tt change.TopicType) Validator {
	return func(_, newVal any, _ change.Change) bool {
		switch tt {
		case change.TopicString:
			_, ok := newVal.(string)
			return ok
		case change.TopicInt:
			_, ok := newVal.(int)
			return ok
		case change.TopicFloat:
			_, ok := newVal.(float64)
			return ok
		case change.TopicBool:
			_, ok := newVal.(bool)
			return ok
		case change.TopicSet, change.TopicList:
			_, ok := newVal.([]any)
			return ok
		case change.TopicDict:
			_, ok := newVal.(*change.Dict)
			return ok
		default:
			return true
		}
	}
}

// DefaultValue returns the zero value the registry seeds a freshly added
// topic with when no explicit initial value is supplied.
func DefaultValue(tt change.TopicType) any {
	switch tt {
	case change.TopicString:
		return ""
	case change.TopicInt:
		return 0
	case change.TopicFloat:
		return 0.0
	case change.TopicBool:
		return false
	case change.TopicSet, change.TopicList:
		return []any{}
	case change.TopicDict:
		return change.NewDict()
	default:
		return nil
	}
}
