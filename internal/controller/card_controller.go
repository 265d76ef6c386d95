package controller

import (
	"cardes-ai-be/internal/apperr"
	"cardes-ai-be/internal/dto"
	"cardes-ai-be/internal/pkg/serverutils"
	"cardes-ai-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICardController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type cardController struct {
	deckService service.IDeckService
}

func NewCardController(deckService service.IDeckService) ICardController {
	return &cardController{
		deckService: deckService,
	}
}

func (c *cardController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/card/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *cardController) Create(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateCardRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.deckService.CreateCard(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create card", res))
}

func (c *cardController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	cardSetId, err := uuid.Parse(ctx.Query("card_set_id"))
	if err != nil {
		return apperr.InvalidInput("card_set_id query parameter is required")
	}

	res, err := c.deckService.ListCards(ctx.Context(), userId, cardSetId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list cards", res))
}

func (c *cardController) Update(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateCardRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.deckService.UpdateCard(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update card", res))
}

func (c *cardController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.deckService.DeleteCard(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete card", nil))
}
