package relay

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const bridgeSubjectPrefix = "blueprint.relay."

var subjectTokenPattern = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// subjectToken makes a user-supplied session name safe to embed as a NATS
// subject token. The real session name travels inside the message payload,
// so token collisions only widen delivery, never misroute it.
func subjectToken(session string) string {
	token := subjectTokenPattern.ReplaceAllString(session, "-")
	if token == "" {
		return "-"
	}
	return token
}

// bridgeMessage wraps a session payload with its origin instance so each
// instance can discard its own echoes.
type bridgeMessage struct {
	Instance string          `json:"instance"`
	Session  string          `json:"session"`
	Payload  json.RawMessage `json:"payload"`
}

// NATSBridge mirrors session events between server instances over core NATS
type NATSBridge struct {
	nc       *nats.Conn
	sub      *nats.Subscription
	hub      *Hub
	instance string
}

// NewNATSBridge connects to NATS and starts relaying remote session events
// into the hub.
func NewNATSBridge(url string, hub *Hub) (*NATSBridge, error) {
	opts := []nats.Option{
		nats.Name("blueprintd-relay"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("reconnected to NATS")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("disconnected from NATS")
			}
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	b := &NATSBridge{
		nc:       nc,
		hub:      hub,
		instance: uuid.NewString(),
	}

	sub, err := nc.Subscribe(bridgeSubjectPrefix+">", b.handleRemote)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to relay subjects: %w", err)
	}
	b.sub = sub

	log.Info().Str("url", url).Str("instance", b.instance).Msg("relay bridge connected")
	return b, nil
}

func (b *NATSBridge) handleRemote(msg *nats.Msg) {
	var bm bridgeMessage
	if err := json.Unmarshal(msg.Data, &bm); err != nil {
		log.Warn().Err(err).Str("subject", msg.Subject).Msg("dropping malformed bridge message")
		return
	}
	if bm.Instance == b.instance {
		return
	}
	b.hub.DeliverRemote(bm.Session, bm.Payload)
}

// Publish mirrors a local session event to other instances
func (b *NATSBridge) Publish(session string, payload []byte) error {
	data, err := json.Marshal(bridgeMessage{
		Instance: b.instance,
		Session:  session,
		Payload:  payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode bridge message: %w", err)
	}
	return b.nc.Publish(bridgeSubjectPrefix+subjectToken(session), data)
}

// Close drops the subscription and connection
func (b *NATSBridge) Close() {
	if b.sub != nil {
		b.sub.Unsubscribe()
	}
	if b.nc != nil {
		b.nc.Close()
		log.Info().Msg("relay bridge closed")
	}
}
