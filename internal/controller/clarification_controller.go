package controller

import (
	"biz-assistant-be/internal/dto"
	"biz-assistant-be/internal/pkg/serverutils"
	"biz-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IClarificationController interface {
	RegisterRoutes(r fiber.Router)
	Pending(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
}

type clarificationController struct {
	clarificationService service.IClarificationService
}

func NewClarificationController(clarificationService service.IClarificationService) IClarificationController {
	return &clarificationController{
		clarificationService: clarificationService,
	}
}

func (c *clarificationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/clarification/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("pending", c.Pending)
	h.Post(":id/answer", c.Answer)
}

func (c *clarificationController) Pending(ctx *fiber.Ctx) error {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid user id in token")
	}

	res, err := c.clarificationService.GetPending(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show pending clarification", res))
}

func (c *clarificationController) Answer(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid clarification id")
	}

	var req dto.AnswerClarificationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.clarificationService.Answer(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success answer clarification", res))
}
