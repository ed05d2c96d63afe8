package server

import "encoding/json"

// inbound is the client→server wire envelope of spec.md §6: an action
// batch or a service request, discriminated by Kind.
type inbound struct {
	Kind        string            `json:"kind"`
	ActionID    string            `json:"action_id,omitempty"`
	Commands    []json.RawMessage `json:"commands,omitempty"`
	ServiceName string            `json:"service_name,omitempty"`
	Args        map[string]any    `json:"args,omitempty"`
	RequestID   string            `json:"request_id,omitempty"`
}

// outbound is the server→client wire envelope: update, response, or
// reject, per spec.md §6.
type outbound struct {
	Kind      string           `json:"kind"`
	Changes   []map[string]any `json:"changes,omitempty"`
	ActionID  string           `json:"action_id,omitempty"`
	RequestID string           `json:"request_id,omitempty"`
	Response  any              `json:"response,omitempty"`
	Reason    string           `json:"reason,omitempty"`
}

func marshalOutbound(o outbound) ([]byte, error) {
	return json.Marshal(o)
}
