package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kintai-app/apiserver/config"
	"github.com/kintai-app/apiserver/internal/logging"
)

// ChannelAttendanceEvents carries accepted attendance field changes for
// downstream consumers (audit, reporting pipelines).
const ChannelAttendanceEvents = "attendance.events"

// AttendanceEvent is the payload published for every accepted change.
type AttendanceEvent struct {
	Username string    `json:"username"`
	Date     string    `json:"date"`
	Field    string    `json:"field"`
	Value    string    `json:"value"`
	At       time.Time `json:"at"`
}

// NewBackendFromConfig selects a broker backend from config. Returns
// (nil, nil) when no provider is configured; eventing is optional.
func NewBackendFromConfig(ctx context.Context, cfg config.MQConfig) (Backend, error) {
	switch cfg.Provider {
	case "rabbitmq":
		return NewRabbitMQClient(cfg.RabbitMQ)
	case "pubsub":
		return NewPubSubClient(ctx, cfg.PubSub)
	default:
		return nil, nil
	}
}

// EventPublisher publishes attendance change events. Publish failures
// are logged and never propagated: eventing must not block a save.
type EventPublisher struct {
	queue *MQ
}

func NewEventPublisher(backend Backend) *EventPublisher {
	if backend == nil {
		return nil
	}
	return &EventPublisher{queue: New(backend)}
}

// AttendanceChanged emits one event per accepted field write.
func (p *EventPublisher) AttendanceChanged(ctx context.Context, username, date, field, value string) {
	if p == nil {
		return
	}

	event := AttendanceEvent{
		Username: username,
		Date:     date,
		Field:    field,
		Value:    value,
		At:       time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logging.Error().Err(err).Msg("marshal attendance event")
		return
	}

	attrs := map[string]string{"username": username, "field": field}
	if _, err := p.queue.Publish(ctx, ChannelAttendanceEvents, payload, attrs); err != nil {
		logging.Error().Err(err).
			Str("username", username).
			Str("date", date).
			Str("field", field).
			Msg("publish attendance event")
	}
}

// Close releases the broker connection.
func (p *EventPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.queue.Close()
}
