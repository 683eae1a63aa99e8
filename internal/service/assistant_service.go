package service

import (
	"context"

	"biz-assistant-be/internal/dto"
	"biz-assistant-be/internal/pkg/logger"
	"biz-assistant-be/pkg/pipeline"
)

// IAssistantService is the webhook entry point: one inbound chat message in,
// one reply out.
type IAssistantService interface {
	HandleMessage(ctx context.Context, req *dto.WebhookMessageRequest) (*dto.WebhookMessageResponse, error)
}

type assistantService struct {
	orchestrator *pipeline.Orchestrator
	log          logger.ILogger
}

func NewAssistantService(orchestrator *pipeline.Orchestrator, log logger.ILogger) IAssistantService {
	return &assistantService{
		orchestrator: orchestrator,
		log:          log,
	}
}

func (s *assistantService) HandleMessage(ctx context.Context, req *dto.WebhookMessageRequest) (*dto.WebhookMessageResponse, error) {
	reply, err := s.orchestrator.Process(ctx, pipeline.InboundMessage{
		UserId:    req.UserId,
		MessageId: req.MessageId,
		Text:      req.Text,
	})
	if err != nil {
		s.log.Error("assistant", "message processing failed", map[string]interface{}{
			"user_id":    req.UserId.String(),
			"message_id": req.MessageId,
			"error":      err.Error(),
		})
		return nil, err
	}

	return &dto.WebhookMessageResponse{
		SessionId:     reply.SessionId,
		Reply:         reply.Text,
		Intent:        reply.Intent,
		State:         reply.State,
		Clarification: reply.Clarification,
		Duplicate:     reply.Duplicate,
	}, nil
}
