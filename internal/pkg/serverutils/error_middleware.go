package serverutils

import (
	"errors"
	"fmt"
	"math"

	"cardes-ai-be/internal/apperr"
	"cardes-ai-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler translates domain errors into the standard envelope.
// Quota denials map to 403 and cooldown denials to 429 with a Retry-After
// header, matching what the clients key on.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var quotaErr *apperr.QuotaExceededError
		if errors.As(err, &quotaErr) {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"code":    fiber.StatusForbidden,
				"message": quotaErr.Message,
				"data": fiber.Map{
					"limit": quotaErr.Limit,
					"used":  quotaErr.Used,
				},
			})
		}

		var cooldownErr *apperr.CooldownError
		if errors.As(err, &cooldownErr) {
			retryAfter := int(math.Ceil(cooldownErr.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			ctx.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"code":    fiber.StatusTooManyRequests,
				"message": cooldownErr.Message,
				"data": fiber.Map{
					"retry_after_seconds": retryAfter,
				},
			})
		}

		if errors.Is(err, apperr.ErrNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, err.Error()))
		}

		if errors.Is(err, apperr.ErrInvalidInput) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, err.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
