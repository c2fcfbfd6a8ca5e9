package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Static errors for err113 compliance.
var (
	ErrNoPublisher = errors.New("publisher is required")
	ErrNoSubject   = errors.New("subject is required")
)

// Publisher sends a message to a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// RelayMessage is the JSON body published for each console event.
type RelayMessage struct {
	Event      string    `json:"event"`
	Args       []string  `json:"args,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Relay streams conn and publishes every event to subject until the stream
// ends. Protocol events are handled as in Stream.
func Relay(ctx context.Context, conn *Conn, publisher Publisher, subject string, refresher Refresher) error {
	if publisher == nil {
		return ErrNoPublisher
	}

	if subject == "" {
		return ErrNoSubject
	}

	return conn.Stream(ctx, func(event Event) error {
		data, err := json.Marshal(RelayMessage{
			Event:      event.Event,
			Args:       event.Args,
			ReceivedAt: time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("encoding %s event: %w", event.Event, err)
		}

		err = publisher.Publish(subject, data)
		if err != nil {
			return fmt.Errorf("publishing to %s: %w", subject, err)
		}

		return nil
	}, refresher)
}
