/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventbus bridges the in-process event bus onto NATS so multiple
// soundlog nodes see each other's recommendation and quota events.
package eventbus

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/friendsincode/soundlog/internal/events"
)

const subjectPrefix = "soundlog.events."

// NATSConfig contains NATS connection configuration.
type NATSConfig struct {
	URL   string
	Token string

	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// DefaultNATSConfig returns default NATS configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// NATSBus fans events out to both local subscribers and a NATS subject per
// event type. When NATS is unreachable it degrades to the in-memory bus.
type NATSBus struct {
	conn   *nats.Conn
	logger zerolog.Logger
	local  *events.Bus
	nodeID string

	mu      sync.Mutex
	remotes map[events.EventType]*nats.Subscription
}

// NewNATSBus creates a NATS-backed event bus. Connection failure is not
// fatal: the bus still delivers locally.
func NewNATSBus(cfg NATSConfig, logger zerolog.Logger) (*NATSBus, error) {
	bus := &NATSBus{
		logger:  logger.With().Str("component", "eventbus").Logger(),
		local:   events.NewBus(),
		nodeID:  generateNodeID(),
		remotes: make(map[events.EventType]*nats.Subscription),
	}

	opts := []nats.Option{
		nats.Name("soundlog-" + bus.nodeID),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		bus.logger.Warn().Err(err).Str("url", cfg.URL).Msg("NATS unavailable, events stay node-local")
		return bus, nil
	}

	bus.conn = conn
	bus.logger.Info().Str("url", cfg.URL).Str("node_id", bus.nodeID).Msg("NATS event bus connected")
	return bus, nil
}

// Subscribe registers a local subscriber and, on first use of an event
// type, bridges the matching NATS subject into the local bus.
func (nb *NATSBus) Subscribe(eventType events.EventType) events.Subscriber {
	sub := nb.local.Subscribe(eventType)

	if nb.conn == nil {
		return sub
	}

	nb.mu.Lock()
	defer nb.mu.Unlock()
	if _, bridged := nb.remotes[eventType]; bridged {
		return sub
	}

	subject := subjectPrefix + string(eventType)
	remote, err := nb.conn.Subscribe(subject, func(msg *nats.Msg) {
		wire, err := unmarshalNATSMessage(msg.Data)
		if err != nil {
			nb.logger.Error().Err(err).Str("subject", subject).Msg("failed to unmarshal NATS message")
			return
		}
		// Ignore our own publishes; the local bus already delivered them.
		if wire.NodeID == nb.nodeID {
			return
		}
		nb.local.Publish(wire.EventType, wire.Payload)
	})
	if err != nil {
		nb.logger.Error().Err(err).Str("subject", subject).Msg("NATS subscribe failed")
		return sub
	}

	nb.remotes[eventType] = remote
	return sub
}

// Publish delivers payload locally and to the NATS subject.
func (nb *NATSBus) Publish(eventType events.EventType, payload events.Payload) {
	nb.local.Publish(eventType, payload)

	if nb.conn == nil {
		return
	}

	data, err := marshalNATSMessage(eventType, payload, nb.nodeID)
	if err != nil {
		nb.logger.Error().Err(err).Msg("failed to marshal NATS message")
		return
	}

	subject := subjectPrefix + string(eventType)
	if err := nb.conn.Publish(subject, data); err != nil {
		nb.logger.Error().Err(err).Str("subject", subject).Msg("NATS publish failed")
	}
}

// Unsubscribe removes a local subscriber.
func (nb *NATSBus) Unsubscribe(eventType events.EventType, sub events.Subscriber) {
	nb.local.Unsubscribe(eventType, sub)
}

// Close drains the NATS connection.
func (nb *NATSBus) Close() error {
	nb.mu.Lock()
	for eventType, remote := range nb.remotes {
		if err := remote.Unsubscribe(); err != nil {
			nb.logger.Debug().Err(err).Str("event_type", string(eventType)).Msg("NATS unsubscribe failed")
		}
	}
	nb.remotes = make(map[events.EventType]*nats.Subscription)
	nb.mu.Unlock()

	if nb.conn != nil {
		if err := nb.conn.Drain(); err != nil {
			return fmt.Errorf("drain nats connection: %w", err)
		}
	}
	return nil
}

// natsMessage represents a message published to NATS.
type natsMessage struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
	MessageID string           `json:"message_id"`
}

func marshalNATSMessage(eventType events.EventType, payload events.Payload, nodeID string) ([]byte, error) {
	msg := natsMessage{
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now(),
		NodeID:    nodeID,
		MessageID: uuid.NewString(),
	}
	return json.Marshal(msg)
}

func unmarshalNATSMessage(data []byte) (*natsMessage, error) {
	var msg natsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal nats message: %w", err)
	}
	return &msg, nil
}

func generateNodeID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "node"
	}
	return host + "-" + uuid.NewString()[:8]
}
