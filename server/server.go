// Package server is the external façade of SPEC_FULL.md §4.5: it wraps
// the engine's StateMachine with the topic_list meta-topic, action/request
// intake, the service registry, and broadcast wiring. It contains no
// topic/change/transition logic of its own — that all lives in change,
// topic, and engine.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/opensync/topicsync/change"
	"github.com/opensync/topicsync/engine"
	"github.com/opensync/topicsync/topic"
)

const topicListName = "_topicsync/topic_list"

// topicSpec is one topic_list entry describing a live topic, per
// SPEC_FULL.md §4.5's meta-topic extension.
type topicSpec struct {
	Type          string `json:"type"`
	IsStateful    bool   `json:"is_stateful"`
	BoundaryValue any    `json:"boundary_value"`
	OrderStrict   bool   `json:"order_strict"`
}

func (s topicSpec) toMap() map[string]any {
	return map[string]any{
		"type":           s.Type,
		"is_stateful":    s.IsStateful,
		"boundary_value": s.BoundaryValue,
		"order_strict":   s.OrderStrict,
	}
}

// Server is one embedding program's state-machine instance; per §9 there
// are no hidden singletons, so the caller constructs exactly one per
// server process.
type Server struct {
	engine   *engine.StateMachine
	registry *topic.Registry
	topics   *topic.DictTopic

	clients  *ClientManager
	services map[string]*Service

	undoStack []*engine.Transition
	redoStack []*engine.Transition

	log *slog.Logger
}

// Option configures a Server at construction time.
type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

func New(opts ...Option) *Server {
	s := &Server{
		registry: topic.NewRegistry(),
		services: map[string]*Service{},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = engine.New(
		s.registry,
		engine.WithLogger(s.log),
		engine.WithOnChangesMade(func(changes []change.Change, actionID string) {
			if s.clients != nil {
				s.clients.Broadcast(changes, actionID)
			}
		}),
		engine.WithOnTransitionDone(func(t *engine.Transition) {
			s.undoStack = append(s.undoStack, t)
			s.redoStack = nil
		}),
	)

	s.clients = NewClientManager(s.handleAction, s.handleRequest, s.log)

	tp, err := s.engine.AddTopic(topicListName, change.TopicDict, true, true, nil)
	if err != nil {
		panic(fmt.Sprintf("server: failed to create topic_list: %v", err))
	}
	s.topics = tp.(*topic.DictTopic)

	// Register topic_list's own descriptor before wiring the cascade
	// listeners below — this entry must not itself trigger topic
	// creation, since the topic already exists.
	selfSpec := topicSpec{Type: string(change.TopicDict), IsStateful: true, OrderStrict: true}
	if err := s.engine.ApplyChange(change.NewDictAddChange(topicListName, topicListName, selfSpec.toMap(), "")); err != nil {
		panic(fmt.Sprintf("server: failed to register self in topic_list: %v", err))
	}

	s.topics.OnAdd(s.addTopicRaw)
	s.topics.OnRemove(s.removeTopicRaw)

	return s
}

func (s *Server) addTopicRaw(name string, spec any) error {
	m, _ := spec.(map[string]any)
	tt, _ := m["type"].(string)
	stateful, _ := m["is_stateful"].(bool)
	orderStrict, _ := m["order_strict"].(bool)
	init := m["boundary_value"]
	_, err := s.engine.AddTopic(name, change.TopicType(tt), stateful, orderStrict, init)
	return err
}

func (s *Server) removeTopicRaw(name string) error {
	return s.engine.RemoveTopic(name)
}

// AddTopic submits a topic_list entry, which the OnAdd wiring above turns
// into a real registry topic inside the same recording scope as whatever
// action is adding it (§5's ordering guarantee).
func (s *Server) AddTopic(name string, tt change.TopicType, stateful, orderStrict bool, init any) error {
	spec := topicSpec{Type: string(tt), IsStateful: stateful, OrderStrict: orderStrict, BoundaryValue: init}
	return s.engine.ApplyChange(change.NewDictAddChange(topicListName, name, spec.toMap(), ""))
}

// RemoveTopic snapshots the doomed topic's current value into
// boundary_value before popping its topic_list entry, under a reentrant
// scope, exactly as the original's remove_topic does.
func (s *Server) RemoveTopic(name string) error {
	tp, ok := s.registry.Get(name)
	if !ok {
		return fmt.Errorf("server: topic %q does not exist", name)
	}
	current := tp.Value()
	return s.engine.Record(engine.RecordOptions{AllowReentry: true, EmitTransition: true}, func() error {
		if err := s.engine.ApplyChange(change.NewDictChangeValueChange(topicListName, name, boundarySpecFor(s.registry, name, current), "")); err != nil {
			return err
		}
		return s.engine.ApplyChange(change.NewDictPopChange(topicListName, name, ""))
	})
}

func boundarySpecFor(reg *topic.Registry, name string, value any) map[string]any {
	tp, _ := reg.Get(name)
	return topicSpec{
		Type:          string(tp.TypeTag()),
		IsStateful:    tp.IsStateful(),
		OrderStrict:   tp.OrderStrict(),
		BoundaryValue: value,
	}.toMap()
}

func (s *Server) Topic(name string) (topic.Topic, bool) { return s.registry.Get(name) }

// RegisterService registers an RPC-style handler under name.
func (s *Server) RegisterService(name string, fn ServiceFunc, passSender bool) {
	s.services[name] = &Service{Name: name, Fn: fn, PassSender: passSender}
}

// On lazily creates an event topic the first time it's referenced,
// requiring inverseFn whenever stateful is true so that undoing an
// emission can replay the matching reverse callback — per
// SPEC_FULL.md §10.
func (s *Server) On(eventName string, fn func(args map[string]any) error, inverseFn func(args map[string]any) error, stateful bool) error {
	if stateful && inverseFn == nil {
		return fmt.Errorf("server: stateful event %q requires an inverse callback", eventName)
	}
	tp, ok := s.registry.Get(eventName)
	if !ok {
		created, err := s.engine.AddTopic(eventName, change.TopicEvent, stateful, false, nil)
		if err != nil {
			return err
		}
		tp = created
	}
	ev := tp.(*topic.EventTopic)
	if fn != nil {
		ev.OnEmit(fn)
	}
	if inverseFn != nil {
		ev.OnReverse(inverseFn)
	}
	return nil
}

// Emit submits an EmitChange for eventName through the same apply path
// actions use.
func (s *Server) Emit(eventName string, args map[string]any) error {
	return s.engine.ApplyChange(change.NewEventEmitChange(eventName, args, ""))
}

// Undo pops the most recent transition off the undo stack and inverts it.
func (s *Server) Undo() error {
	if len(s.undoStack) == 0 {
		return fmt.Errorf("server: nothing to undo")
	}
	t := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	if err := s.engine.Undo(t); err != nil {
		return err
	}
	s.redoStack = append(s.redoStack, t)
	return nil
}

// Redo re-applies the most recently undone transition.
func (s *Server) Redo() error {
	if len(s.redoStack) == 0 {
		return fmt.Errorf("server: nothing to redo")
	}
	t := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	if err := s.engine.Redo(t); err != nil {
		return err
	}
	s.undoStack = append(s.undoStack, t)
	return nil
}

// ClientManager exposes the websocket transport for HTTP route wiring.
func (s *Server) ClientManager() *ClientManager { return s.clients }

// handleAction implements the action-intake algorithm of spec.md §4.5:
// deserialize each change dict, open a recording scope with
// action_source = sender, apply changes in order; on failure, reject.
func (s *Server) handleAction(sender *Client, actionID string, commands []json.RawMessage) {
	err := s.engine.Record(engine.RecordOptions{
		ActionSource:   sender.ID,
		ActionID:       actionID,
		EmitTransition: true,
	}, func() error {
		for _, raw := range commands {
			var dict map[string]any
			if err := json.Unmarshal(raw, &dict); err != nil {
				return err
			}
			c, err := change.Deserialize(dict)
			if err != nil {
				return err
			}
			if err := s.engine.ApplyChange(c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn("action rejected", "action_id", actionID, "client", sender.ID, "error", err)
		s.clients.Reject(sender, err.Error())
	}
}

// handleRequest implements the RPC surface of spec.md §6: a response is
// sent even on failure, before the error is logged, so a client's
// pending-request bookkeeping never leaks.
func (s *Server) handleRequest(sender *Client, serviceName string, args map[string]any, requestID string) {
	svc, ok := s.services[serviceName]
	if !ok {
		s.clients.Respond(sender, requestID, nil)
		s.log.Warn("unknown service requested", "service", serviceName, "client", sender.ID)
		return
	}
	if svc.PassSender {
		if args == nil {
			args = map[string]any{}
		}
		args["sender"] = sender.ID
	}
	resp, err := svc.Fn(context.Background(), args)
	if err != nil {
		s.clients.Respond(sender, requestID, nil)
		s.log.Warn("service call failed", "service", serviceName, "error", err)
		return
	}
	s.clients.Respond(sender, requestID, resp)
}
