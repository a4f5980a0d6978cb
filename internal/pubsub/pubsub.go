// Package pubsub fans roster events out to other processes.
package pubsub

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/DoyleJ11/team-builder/internal/engine"
)

type Publisher interface {
	Publish(room string, version int, events []engine.Event) error
	Close()
}

// Message is the JSON body published for one applied command.
type Message struct {
	Room    string  `json:"room"`
	Version int     `json:"version"`
	Events  []Event `json:"events"`
}

type Event struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	Tier     string `json:"tier,omitempty"`
	Position string `json:"position,omitempty"`
	Slot     string `json:"slot,omitempty"`
	Operator string `json:"operator,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

func NewMessage(room string, version int, events []engine.Event) Message {
	m := Message{Room: room, Version: version, Events: make([]Event, 0, len(events))}
	for _, e := range events {
		m.Events = append(m.Events, Event{
			Type:     string(e.Type),
			Name:     e.Name,
			Tier:     string(e.Tier),
			Position: e.Position,
			Slot:     string(e.Slot),
			Operator: string(e.Operator),
			Detail:   e.Detail,
		})
	}
	return m
}

// NATSPublisher publishes each room's events on "<prefix>.<room>".
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

func NewNATSPublisher(natsURL, prefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(natsURL, nats.Name("team-builder"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc, prefix: prefix}, nil
}

func (p *NATSPublisher) Subject(room string) string {
	return p.prefix + "." + room
}

func (p *NATSPublisher) Publish(room string, version int, events []engine.Event) error {
	data, err := json.Marshal(NewMessage(room, version, events))
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}
	if err := p.nc.Publish(p.Subject(room), data); err != nil {
		return fmt.Errorf("failed to publish to NATS: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}

// Noop drops everything; used when NATS is not configured.
type Noop struct{}

func (Noop) Publish(string, int, []engine.Event) error { return nil }
func (Noop) Close()                                    {}
