// Package notify announces generated layouts on an MQTT topic.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
)

// EventLayoutGenerated is the event name carried in every message.
const EventLayoutGenerated = "layout.generated"

// Options configures the broker connection.
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
	// Timeout bounds connect and publish waits. Zero means 5s.
	Timeout time.Duration
}

// Event is the published payload: a summary, not the full layout.
type Event struct {
	Event           string    `json:"event"`
	Rooms           int       `json:"rooms"`
	Doors           int       `json:"doors"`
	Airlocks        int       `json:"airlocks"`
	TotalArea       float64   `json:"totalArea"`
	ComplianceScore int       `json:"complianceScore"`
	Valid           bool      `json:"valid"`
	Warnings        int       `json:"warnings"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// Publisher publishes layout events.
type Publisher struct {
	client  mqtt.Client
	topic   string
	qos     byte
	timeout time.Duration
	logger  *zap.Logger
}

// Connect dials the broker and returns a publisher.
func Connect(opts Options, logger *zap.Logger) (*Publisher, error) {
	o := mqtt.NewClientOptions()
	o.AddBroker(opts.Broker)
	o.SetClientID(opts.ClientID)
	if opts.Username != "" {
		o.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		o.SetPassword(opts.Password)
	}
	o.SetAutoReconnect(true)
	o.SetCleanSession(true)

	p := NewPublisher(mqtt.NewClient(o), opts, logger)
	token := p.client.Connect()
	if !token.WaitTimeout(p.timeout) {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: timed out", opts.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	return p, nil
}

// NewPublisher wraps an existing client.
func NewPublisher(client mqtt.Client, opts Options, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{client: client, topic: opts.Topic, qos: opts.QoS, timeout: timeout, logger: logger}
}

// NewEvent summarizes l.
func NewEvent(l *facility.Layout) Event {
	ev := Event{
		Event:           EventLayoutGenerated,
		Rooms:           len(l.Shapes),
		Doors:           len(l.DoorConnections),
		TotalArea:       l.Metadata.TotalArea,
		ComplianceScore: l.Metadata.ComplianceScore,
		Valid:           true,
		Warnings:        len(l.Metadata.Warnings),
		GeneratedAt:     l.Metadata.GeneratedAt,
	}
	for _, s := range l.Shapes {
		if s.Airlock {
			ev.Airlocks++
		}
	}
	if l.Report != nil {
		ev.Valid = l.Report.Valid
	}
	return ev
}

// LayoutGenerated publishes the event for l. The wait ends at the earlier
// of the publish timeout and ctx's deadline.
func (p *Publisher) LayoutGenerated(ctx context.Context, l *facility.Layout) error {
	payload, err := json.Marshal(NewEvent(l))
	if err != nil {
		return fmt.Errorf("encoding layout event: %w", err)
	}

	token := p.client.Publish(p.topic, p.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return fmt.Errorf("failed to publish to topic %s: timed out", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", p.topic, err)
	}
	p.logger.Debug("layout event published", zap.String("topic", p.topic), zap.Int("bytes", len(payload)))
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
