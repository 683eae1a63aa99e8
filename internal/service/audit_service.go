package service

import (
	"context"
	"encoding/json"
	"time"

	"biz-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// auditEnvelope is the wire form of an event on the in-process bus.
type auditEnvelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// auditPublisher bridges audit events onto the in-process watermill bus.
// Publishing decouples the hot path from the NATS forwarder: the consumer
// drains the channel on its own goroutine.
type auditPublisher struct {
	pubSub    *gochannel.GoChannel
	topicName string
}

func NewAuditPublisher(pubSub *gochannel.GoChannel, topicName string) events.Publisher {
	return &auditPublisher{
		pubSub:    pubSub,
		topicName: topicName,
	}
}

func (p *auditPublisher) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(auditEnvelope{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return p.pubSub.Publish(p.topicName, msg)
}
