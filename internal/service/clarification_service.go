package service

import (
	"context"

	"biz-assistant-be/internal/dto"
	"biz-assistant-be/internal/entity"
	"biz-assistant-be/pkg/clarify"

	"github.com/google/uuid"
)

type IClarificationService interface {
	GetPending(ctx context.Context, userID uuid.UUID) (*dto.ShowClarificationResponse, error)
	Answer(ctx context.Context, req *dto.AnswerClarificationRequest) (*dto.ShowClarificationResponse, error)
}

type clarificationService struct {
	manager *clarify.Manager
}

func NewClarificationService(manager *clarify.Manager) IClarificationService {
	return &clarificationService{manager: manager}
}

func (s *clarificationService) GetPending(ctx context.Context, userID uuid.UUID) (*dto.ShowClarificationResponse, error) {
	request, err := s.manager.GetPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, nil
	}
	return toClarificationResponse(request), nil
}

func (s *clarificationService) Answer(ctx context.Context, req *dto.AnswerClarificationRequest) (*dto.ShowClarificationResponse, error) {
	request, err := s.manager.Answer(ctx, req.Id, req.Answer)
	if err != nil {
		return nil, err
	}
	return toClarificationResponse(request), nil
}

func toClarificationResponse(request *entity.ClarificationRequest) *dto.ShowClarificationResponse {
	return &dto.ShowClarificationResponse{
		Id:        request.Id,
		SessionId: request.SessionId,
		Prompt:    request.Prompt,
		Options:   request.Options,
		Status:    request.Status,
		Answer:    request.Answer,
		CreatedAt: request.CreatedAt,
		ExpiresAt: request.ExpiresAt,
	}
}
