package service

import (
	"context"
	"encoding/json"

	"biz-assistant-be/internal/pkg/logger"
	"biz-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process audit bus: every event goes to the
// isolated audit log, and to NATS when a forwarder is configured.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	forwarder events.Publisher
	auditLog  logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	forwarder events.Publisher,
	auditLog logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		forwarder: forwarder,
		auditLog:  auditLog,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var envelope auditEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.auditLog.Error("audit", "failed to unmarshal audit message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	details := map[string]interface{}{
		"occurred_at": envelope.OccurredAt,
	}
	for k, v := range envelope.Data {
		details[k] = v
	}
	cs.auditLog.Info(envelope.Type, "audit event", details)

	if cs.forwarder != nil {
		event := events.BaseEvent{
			Type:       envelope.Type,
			Data:       envelope.Data,
			OccurredAt: envelope.OccurredAt,
		}
		if err := cs.forwarder.Publish(ctx, event); err != nil {
			cs.auditLog.Warn("audit", "failed to forward audit event", map[string]interface{}{
				"type":  envelope.Type,
				"error": err.Error(),
			})
			msg.Nack() // Nack for retriable errors
			return
		}
	}

	msg.Ack()
}
