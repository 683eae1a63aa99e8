package controller

import (
	"biz-assistant-be/internal/constant"
	"biz-assistant-be/internal/dto"
	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/pkg/serverutils"
	"biz-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	End(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Get(":id/history", c.History)
	h.Post(":id/end", c.End)
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	session, err := c.sessionService.Get(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", toSessionResponse(session)))
}

func (c *sessionController) List(ctx *fiber.Ctx) error {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid user id in token")
	}

	limit := ctx.QueryInt("limit", 20)
	sessions, err := c.sessionService.ListByUser(ctx.Context(), userId, limit)
	if err != nil {
		return err
	}

	res := make([]*dto.ShowSessionResponse, len(sessions))
	for i, session := range sessions {
		res[i] = toSessionResponse(session)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *sessionController) History(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	entries, err := c.sessionService.TransitionHistory(ctx.Context(), id)
	if err != nil {
		return err
	}

	res := make([]*dto.TransitionLogResponse, len(entries))
	for i, entry := range entries {
		res[i] = &dto.TransitionLogResponse{
			Id:            entry.Id,
			FromState:     entry.FromState,
			ToState:       entry.ToState,
			Trigger:       entry.Trigger,
			CorrelationId: entry.CorrelationId,
			Success:       entry.Success,
			Error:         entry.Error,
			CreatedAt:     entry.CreatedAt,
		}
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show session history", res))
}

func (c *sessionController) End(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	var req dto.EndSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if req.Reason == "" {
		req.Reason = constant.ClosureUserCancelled
	}

	if err := c.sessionService.End(ctx.Context(), id, req.Reason); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success end session", nil))
}

func toSessionResponse(session *entity.Session) *dto.ShowSessionResponse {
	return &dto.ShowSessionResponse{
		Id:                   session.Id,
		UserId:               session.UserId,
		FsmState:             session.FsmState,
		ExpectingResponse:    session.Metadata.ExpectingResponse,
		LastAction:           session.Metadata.LastAction,
		AvailableNextActions: session.Metadata.AvailableNextActions,
		ClosureReason:        session.ClosureReason,
		CreatedAt:            session.CreatedAt,
		LastActivityAt:       session.LastActivityAt,
	}
}
