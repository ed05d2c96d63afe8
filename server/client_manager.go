package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/opensync/topicsync/change"
	"github.com/opensync/topicsync/pkg/ulid"
	"github.com/opensync/topicsync/server/ws"
)

// Client is one accepted websocket connection, addressable by ID as the
// action_source / RPC sender.
type Client struct {
	ID   string
	conn *ws.Connection
}

// send marshals and enqueues an outbound frame for delivery to this
// client only.
func (c *Client) send(o outbound) {
	data, err := marshalOutbound(o)
	if err != nil {
		return
	}
	c.conn.Send(data)
}

// ClientManager accepts websocket connections and invokes onAction /
// onRequest for every inbound action/request frame from the connection's
// read pump callback. Each connection runs its own read pump goroutine, so
// dispatch holds dispatchMu for the whole call: frames from all clients
// reach the state machine one at a time, which keeps §5's "single
// applier" property true across the network boundary.
type ClientManager struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader

	dispatchMu sync.Mutex

	onAction  func(sender *Client, actionID string, commands []json.RawMessage)
	onRequest func(sender *Client, serviceName string, args map[string]any, requestID string)

	log *slog.Logger
}

func NewClientManager(
	onAction func(sender *Client, actionID string, commands []json.RawMessage),
	onRequest func(sender *Client, serviceName string, args map[string]any, requestID string),
	log *slog.Logger,
) *ClientManager {
	return &ClientManager{
		hub:       ws.NewHub(),
		upgrader:  websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
		onAction:  onAction,
		onRequest: onRequest,
		log:       log,
	}
}

// HandleWebSocket upgrades the request, registers the new client, and
// starts its pumps. Incoming frames are dispatched synchronously from the
// connection's own read pump.
func (m *ClientManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{ID: ulid.New()}
	onMessage := func(data []byte) { m.dispatch(client, data) }
	wsConn := ws.NewConnection(m.hub, conn, client.ID, m.log, onMessage, func() {
		m.log.Debug("client disconnected", "client", client.ID)
	})
	client.conn = wsConn

	m.hub.Register(wsConn)
	wsConn.Start()
	m.log.Debug("client connected", "client", client.ID)
}

func (m *ClientManager) dispatch(sender *Client, data []byte) {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	var env inbound
	if err := json.Unmarshal(data, &env); err != nil {
		sender.send(outbound{Kind: "reject", Reason: "malformed frame"})
		return
	}
	switch env.Kind {
	case "action":
		m.onAction(sender, env.ActionID, env.Commands)
	case "request":
		m.onRequest(sender, env.ServiceName, env.Args, env.RequestID)
	default:
		sender.send(outbound{Kind: "reject", Reason: "unknown frame kind"})
	}
}

// Reject echoes an action failure back to sender, per spec.md §6.
func (m *ClientManager) Reject(sender *Client, reason string) {
	sender.send(outbound{Kind: "reject", Reason: reason})
}

// Respond delivers an RPC response back to sender.
func (m *ClientManager) Respond(sender *Client, requestID string, response any) {
	sender.send(outbound{Kind: "response", RequestID: requestID, Response: response})
}

// Broadcast fans the filtered change log out to every connected client.
func (m *ClientManager) Broadcast(changes []change.Change, actionID string) {
	serialized := make([]map[string]any, 0, len(changes))
	for _, c := range changes {
		serialized = append(serialized, c.Serialize())
	}
	data, err := marshalOutbound(outbound{Kind: "update", Changes: serialized, ActionID: actionID})
	if err != nil {
		m.log.Error("failed to marshal broadcast", "error", err)
		return
	}
	m.hub.Broadcast(data)
}

func (m *ClientManager) ConnectedCount() int { return m.hub.Count() }
