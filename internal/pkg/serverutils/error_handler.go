package serverutils

import (
	"errors"

	"biz-assistant-be/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts service errors into HTTP responses.
// Internal detail stays in the logs; clients get the taxonomy status and a
// safe message.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		status, message := statusFor(err)
		return ctx.Status(status).JSON(ErrorResponse(status, message))
	}
}

func statusFor(err error) (int, string) {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return fiber.StatusBadRequest, err.Error()
	case apperror.KindNotFound:
		return fiber.StatusNotFound, err.Error()
	case apperror.KindExpired:
		return fiber.StatusGone, err.Error()
	case apperror.KindConflict:
		return fiber.StatusConflict, err.Error()
	case apperror.KindUpstreamTimeout:
		return fiber.StatusGatewayTimeout, "upstream call timed out"
	case apperror.KindUpstream:
		return fiber.StatusBadGateway, "upstream call failed"
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}
