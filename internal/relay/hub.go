// Package relay fans collaborative editing events out to the members of a
// session. Clients speak a small JSON envelope protocol over websockets;
// an optional NATS bridge extends fan-out across server instances.
package relay

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Envelope is the wire format for relay events, both directions
type Envelope struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// Bridge carries session payloads to other server instances
type Bridge interface {
	Publish(session string, payload []byte) error
}

// Hub tracks sessions and routes events between their members
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]bool
	bridge   Bridge
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*Client]bool)}
}

// AttachBridge enables cross-instance fan-out. Must be called before any
// client connects.
func (h *Hub) AttachBridge(b Bridge) {
	h.bridge = b
}

// Register announces a new client and confirms the connection to it
func (h *Hub) Register(c *Client) {
	log.Info().Str("client", c.id).Msg("client connected")
	c.deliver(Envelope{Event: "connected", Data: map[string]interface{}{"session_id": c.id}})
}

// Unregister removes a client from its session, if any
func (h *Hub) Unregister(c *Client) {
	h.leave(c)
	log.Info().Str("client", c.id).Msg("client disconnected")
}

func (h *Hub) join(c *Client, session string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.session != "" {
		delete(h.sessions[c.session], c)
	}
	members := h.sessions[session]
	if members == nil {
		members = make(map[*Client]bool)
		h.sessions[session] = members
	}
	members[c] = true
	c.session = session
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.session == "" {
		return
	}
	if members, ok := h.sessions[c.session]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.sessions, c.session)
		}
	}
	c.session = ""
}

// broadcast delivers an envelope to every member of the session except skip
// (nil delivers to everyone), then mirrors it over the bridge.
func (h *Hub) broadcast(session string, env Envelope, skip *Client) {
	payload, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("event", env.Event).Msg("failed to encode event")
		return
	}

	h.deliverLocal(session, payload, skip)

	if h.bridge != nil {
		if err := h.bridge.Publish(session, payload); err != nil {
			log.Warn().Err(err).Str("session", session).Msg("bridge publish failed")
		}
	}
}

func (h *Hub) deliverLocal(session string, payload []byte, skip *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for member := range h.sessions[session] {
		if member == skip {
			continue
		}
		member.deliverRaw(payload)
	}
}

// DeliverRemote hands a payload received from the bridge to local session
// members. Remote events are never skipped per-client; the sender lives on
// another instance.
func (h *Hub) DeliverRemote(session string, payload []byte) {
	h.deliverLocal(session, payload, nil)
}

// HandleEvent routes one inbound envelope from a client
func (h *Hub) HandleEvent(c *Client, env Envelope) {
	data := env.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	session, _ := data["session_id"].(string)

	switch env.Event {
	case "join_session":
		if session == "" {
			c.sendError("No session_id provided")
			return
		}
		userName := stringOr(data, "user_name", "Anonymous")
		h.join(c, session)
		log.Info().Str("user", userName).Str("session", session).Msg("user joined session")

		h.broadcast(session, Envelope{Event: "user_joined", Data: map[string]interface{}{
			"user_name":  userName,
			"session_id": c.id,
		}}, c)
		c.deliver(Envelope{Event: "joined_session", Data: map[string]interface{}{
			"session_id": session,
			"message":    "Joined session " + session,
		}})

	case "leave_session":
		if session == "" {
			c.sendError("No session_id provided")
			return
		}
		h.leave(c)
		h.broadcast(session, Envelope{Event: "user_left", Data: map[string]interface{}{
			"session_id": c.id,
		}}, nil)
		c.deliver(Envelope{Event: "left_session", Data: map[string]interface{}{"session_id": session}})

	case "component_added":
		h.relayToOthers(c, session, env.Event, data, "component")
	case "component_updated":
		h.relayToOthers(c, session, env.Event, data, "component_id", "updates")
	case "component_deleted":
		h.relayToOthers(c, session, env.Event, data, "component_id")
	case "connection_added":
		h.relayToOthers(c, session, env.Event, data, "connection")
	case "connection_deleted":
		h.relayToOthers(c, session, env.Event, data, "connection_id")

	case "chat_message":
		message, _ := data["message"].(string)
		if session == "" || message == "" {
			c.sendError("Invalid data")
			return
		}
		h.broadcast(session, Envelope{Event: "chat_message", Data: map[string]interface{}{
			"message":   message,
			"user_name": stringOr(data, "user_name", "Anonymous"),
			"from_user": c.id,
			"timestamp": data["timestamp"],
		}}, nil)

	case "ai_response":
		response, _ := data["response"].(string)
		if session == "" || response == "" {
			c.sendError("Invalid data")
			return
		}
		h.broadcast(session, Envelope{Event: "ai_response", Data: map[string]interface{}{
			"response":  response,
			"timestamp": data["timestamp"],
		}}, nil)

	case "cursor_move":
		if session == "" {
			c.sendError("No session_id provided")
			return
		}
		h.broadcast(session, Envelope{Event: "cursor_move", Data: map[string]interface{}{
			"x":         data["x"],
			"y":         data["y"],
			"user_name": stringOr(data, "user_name", "Anonymous"),
			"from_user": c.id,
		}}, c)

	case "selection_changed":
		if session == "" {
			c.sendError("No session_id provided")
			return
		}
		selected := data["selected_components"]
		if selected == nil {
			selected = []interface{}{}
		}
		h.broadcast(session, Envelope{Event: "selection_changed", Data: map[string]interface{}{
			"selected_components": selected,
			"user_name":           stringOr(data, "user_name", "Anonymous"),
			"from_user":           c.id,
		}}, c)

	default:
		c.sendError("Unknown event: " + env.Event)
	}
}

// relayToOthers forwards a diagram mutation to everyone else in the session,
// tagging the sender. All named fields must be present.
func (h *Hub) relayToOthers(c *Client, session, event string, data map[string]interface{}, fields ...string) {
	if session == "" {
		c.sendError("Invalid data")
		return
	}
	out := map[string]interface{}{"from_user": c.id}
	for _, f := range fields {
		v, ok := data[f]
		if !ok || v == nil {
			c.sendError("Invalid data")
			return
		}
		out[f] = v
	}
	h.broadcast(session, Envelope{Event: event, Data: out}, c)
}

func stringOr(data map[string]interface{}, key, fallback string) string {
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
