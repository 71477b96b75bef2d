package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(hub *Hub, id string) *Client {
	return &Client{
		id:   id,
		hub:  hub,
		send: make(chan []byte, sendBuffer),
	}
}

// drain collects every queued envelope for a client
func drain(t *testing.T, c *Client) []Envelope {
	t.Helper()
	var events []Envelope
	for {
		select {
		case payload := <-c.send:
			var env Envelope
			require.NoError(t, json.Unmarshal(payload, &env))
			events = append(events, env)
		default:
			return events
		}
	}
}

func eventNames(events []Envelope) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Event
	}
	return names
}

func joinSession(t *testing.T, hub *Hub, c *Client, session, user string) {
	t.Helper()
	hub.HandleEvent(c, Envelope{Event: "join_session", Data: map[string]interface{}{
		"session_id": session,
		"user_name":  user,
	}})
	drain(t, c)
}

func TestRegisterConfirmsConnection(t *testing.T) {
	hub := NewHub()
	c := testClient(hub, "c1")
	hub.Register(c)

	events := drain(t, c)
	require.Len(t, events, 1)
	assert.Equal(t, "connected", events[0].Event)
	assert.Equal(t, "c1", events[0].Data["session_id"])
}

func TestJoinSessionNotifiesOthersAndSelf(t *testing.T) {
	hub := NewHub()
	a := testClient(hub, "a")
	b := testClient(hub, "b")
	joinSession(t, hub, a, "room", "Ada")

	hub.HandleEvent(b, Envelope{Event: "join_session", Data: map[string]interface{}{
		"session_id": "room",
		"user_name":  "Grace",
	}})

	aEvents := drain(t, a)
	require.Len(t, aEvents, 1)
	assert.Equal(t, "user_joined", aEvents[0].Event)
	assert.Equal(t, "Grace", aEvents[0].Data["user_name"])
	assert.Equal(t, "b", aEvents[0].Data["session_id"])

	bEvents := drain(t, b)
	require.Len(t, bEvents, 1)
	assert.Equal(t, "joined_session", bEvents[0].Event)
	assert.Equal(t, "room", bEvents[0].Data["session_id"])
}

func TestJoinSessionWithoutID(t *testing.T) {
	hub := NewHub()
	c := testClient(hub, "c")
	hub.HandleEvent(c, Envelope{Event: "join_session"})

	events := drain(t, c)
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].Event)
}

func TestLeaveSessionNotifiesRemainingMembers(t *testing.T) {
	hub := NewHub()
	a := testClient(hub, "a")
	b := testClient(hub, "b")
	joinSession(t, hub, a, "room", "Ada")
	joinSession(t, hub, b, "room", "Grace")
	drain(t, a)

	hub.HandleEvent(b, Envelope{Event: "leave_session", Data: map[string]interface{}{
		"session_id": "room",
	}})

	aEvents := drain(t, a)
	require.Len(t, aEvents, 1)
	assert.Equal(t, "user_left", aEvents[0].Event)

	bEvents := drain(t, b)
	require.Len(t, bEvents, 1)
	assert.Equal(t, "left_session", bEvents[0].Event)
}

func TestDiagramEventsSkipSender(t *testing.T) {
	hub := NewHub()
	a := testClient(hub, "a")
	b := testClient(hub, "b")
	joinSession(t, hub, a, "room", "Ada")
	joinSession(t, hub, b, "room", "Grace")
	drain(t, a)

	hub.HandleEvent(a, Envelope{Event: "component_added", Data: map[string]interface{}{
		"session_id": "room",
		"component":  map[string]interface{}{"id": "api", "name": "API"},
	}})

	assert.Empty(t, drain(t, a), "sender must not receive its own mutation")

	bEvents := drain(t, b)
	require.Len(t, bEvents, 1)
	assert.Equal(t, "component_added", bEvents[0].Event)
	assert.Equal(t, "a", bEvents[0].Data["from_user"])
	component := bEvents[0].Data["component"].(map[string]interface{})
	assert.Equal(t, "API", component["name"])
}

func TestComponentUpdatedRequiresAllFields(t *testing.T) {
	hub := NewHub()
	a := testClient(hub, "a")
	joinSession(t, hub, a, "room", "Ada")

	hub.HandleEvent(a, Envelope{Event: "component_updated", Data: map[string]interface{}{
		"session_id":   "room",
		"component_id": "api",
		// updates missing
	}})

	events := drain(t, a)
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].Event)
}

func TestChatMessageIncludesSender(t *testing.T) {
	hub := NewHub()
	a := testClient(hub, "a")
	b := testClient(hub, "b")
	joinSession(t, hub, a, "room", "Ada")
	joinSession(t, hub, b, "room", "Grace")
	drain(t, a)

	hub.HandleEvent(a, Envelope{Event: "chat_message", Data: map[string]interface{}{
		"session_id": "room",
		"message":    "hello",
		"user_name":  "Ada",
	}})

	aEvents := drain(t, a)
	require.Len(t, aEvents, 1, "chat goes to the sender too")
	assert.Equal(t, "chat_message", aEvents[0].Event)
	assert.Equal(t, "hello", aEvents[0].Data["message"])
	assert.Equal(t, "a", aEvents[0].Data["from_user"])

	bEvents := drain(t, b)
	require.Len(t, bEvents, 1)
}

func TestCursorMoveSkipsSenderAndDefaultsName(t *testing.T) {
	hub := NewHub()
	a := testClient(hub, "a")
	b := testClient(hub, "b")
	joinSession(t, hub, a, "room", "Ada")
	joinSession(t, hub, b, "room", "")
	drain(t, a)

	hub.HandleEvent(b, Envelope{Event: "cursor_move", Data: map[string]interface{}{
		"session_id": "room",
		"x":          10.0,
		"y":          20.0,
	}})

	assert.Empty(t, drain(t, b))
	aEvents := drain(t, a)
	require.Len(t, aEvents, 1)
	assert.Equal(t, "cursor_move", aEvents[0].Event)
	assert.Equal(t, "Anonymous", aEvents[0].Data["user_name"])
	assert.Equal(t, 10.0, aEvents[0].Data["x"])
}

func TestEventsDoNotLeakAcrossSessions(t *testing.T) {
	hub := NewHub()
	a := testClient(hub, "a")
	b := testClient(hub, "b")
	joinSession(t, hub, a, "room-1", "Ada")
	joinSession(t, hub, b, "room-2", "Grace")

	hub.HandleEvent(a, Envelope{Event: "chat_message", Data: map[string]interface{}{
		"session_id": "room-1",
		"message":    "secret",
	}})

	assert.Empty(t, drain(t, b))
}

func TestUnknownEvent(t *testing.T) {
	hub := NewHub()
	c := testClient(hub, "c")
	hub.HandleEvent(c, Envelope{Event: "teleport"})

	events := drain(t, c)
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].Event)
}

type recordingBridge struct {
	sessions []string
	payloads [][]byte
}

func (r *recordingBridge) Publish(session string, payload []byte) error {
	r.sessions = append(r.sessions, session)
	r.payloads = append(r.payloads, payload)
	return nil
}

func TestBroadcastMirrorsToBridge(t *testing.T) {
	hub := NewHub()
	bridge := &recordingBridge{}
	hub.AttachBridge(bridge)

	a := testClient(hub, "a")
	joinSession(t, hub, a, "room", "Ada")

	hub.HandleEvent(a, Envelope{Event: "chat_message", Data: map[string]interface{}{
		"session_id": "room",
		"message":    "hi",
	}})

	// join broadcasts user_joined, then the chat message follows
	require.NotEmpty(t, bridge.sessions)
	assert.Equal(t, "room", bridge.sessions[len(bridge.sessions)-1])
	assert.Contains(t, string(bridge.payloads[len(bridge.payloads)-1]), "chat_message")
}

func TestDeliverRemoteReachesAllMembers(t *testing.T) {
	hub := NewHub()
	a := testClient(hub, "a")
	joinSession(t, hub, a, "room", "Ada")

	payload, err := json.Marshal(Envelope{Event: "component_added", Data: map[string]interface{}{
		"component": map[string]interface{}{"id": "x"},
		"from_user": "remote",
	}})
	require.NoError(t, err)

	hub.DeliverRemote("room", payload)

	events := drain(t, a)
	require.Len(t, events, 1)
	assert.Equal(t, []string{"component_added"}, eventNames(events))
}
