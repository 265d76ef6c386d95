package controller

import (
	"cardes-ai-be/internal/dto"
	"cardes-ai-be/internal/pkg/serverutils"
	"cardes-ai-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ITtsController interface {
	RegisterRoutes(r fiber.Router)
	Synthesize(ctx *fiber.Ctx) error
	SynthesizeSlow(ctx *fiber.Ctx) error
}

type ttsController struct {
	ttsService service.ITtsService
}

func NewTtsController(ttsService service.ITtsService) ITtsController {
	return &ttsController{
		ttsService: ttsService,
	}
}

func (c *ttsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/tts/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("speech", c.Synthesize)
	h.Post("speech/slow", c.SynthesizeSlow)
}

func (c *ttsController) Synthesize(ctx *fiber.Ctx) error {
	return c.handle(ctx, false)
}

func (c *ttsController) SynthesizeSlow(ctx *fiber.Ctx) error {
	return c.handle(ctx, true)
}

func (c *ttsController) handle(ctx *fiber.Ctx, slow bool) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SynthesizeSpeechRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ttsService.Synthesize(ctx.Context(), userId, &req, slow)
	if err != nil {
		return err
	}

	ctx.Set("Content-Type", res.ContentType)
	return ctx.Send(res.Audio)
}
