package controller

import (
	"biz-assistant-be/internal/dto"
	"biz-assistant-be/internal/pkg/serverutils"
	"biz-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	HandleMessage(ctx *fiber.Ctx) error
}

type webhookController struct {
	assistantService service.IAssistantService
	gatewayToken     string
}

func NewWebhookController(assistantService service.IAssistantService, gatewayToken string) IWebhookController {
	return &webhookController{
		assistantService: assistantService,
		gatewayToken:     gatewayToken,
	}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webhook/v1")
	h.Use(c.gatewayAuth)
	h.Post("message", c.HandleMessage)
}

// gatewayAuth checks the shared token the messaging gateway sends. Distinct
// from the JWT guard: the gateway is a machine caller, not a user.
func (c *webhookController) gatewayAuth(ctx *fiber.Ctx) error {
	if c.gatewayToken == "" {
		return ctx.Next()
	}
	if ctx.Get("X-Gateway-Token") != c.gatewayToken {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid gateway token"})
	}
	return ctx.Next()
}

func (c *webhookController) HandleMessage(ctx *fiber.Ctx) error {
	var req dto.WebhookMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.HandleMessage(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success handle message", res))
}
