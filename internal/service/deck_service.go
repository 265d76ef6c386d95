package service

import (
	"context"
	"time"

	"cardes-ai-be/internal/apperr"
	"cardes-ai-be/internal/dto"
	"cardes-ai-be/internal/entity"
	"cardes-ai-be/internal/repository/specification"
	"cardes-ai-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IDeckService interface {
	CreateCategory(ctx context.Context, userId uuid.UUID, request *dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	ListCategories(ctx context.Context, userId uuid.UUID) ([]*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, userId uuid.UUID, request *dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, userId uuid.UUID, id uuid.UUID) error

	CreateCardSet(ctx context.Context, userId uuid.UUID, request *dto.CreateCardSetRequest) (*dto.CardSetResponse, error)
	ListCardSets(ctx context.Context, userId uuid.UUID) ([]*dto.CardSetResponse, error)
	ShowCardSet(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.CardSetResponse, error)
	UpdateCardSet(ctx context.Context, userId uuid.UUID, request *dto.UpdateCardSetRequest) (*dto.CardSetResponse, error)
	DeleteCardSet(ctx context.Context, userId uuid.UUID, id uuid.UUID) error

	CreateCard(ctx context.Context, userId uuid.UUID, request *dto.CreateCardRequest) (*dto.CardResponse, error)
	ListCards(ctx context.Context, userId uuid.UUID, cardSetId uuid.UUID) ([]*dto.CardResponse, error)
	UpdateCard(ctx context.Context, userId uuid.UUID, request *dto.UpdateCardRequest) (*dto.CardResponse, error)
	DeleteCard(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type deckService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewDeckService(uowFactory unitofwork.RepositoryFactory) IDeckService {
	return &deckService{
		uowFactory: uowFactory,
	}
}

func (ds *deckService) CreateCategory(ctx context.Context, userId uuid.UUID, request *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	category := entity.Category{
		Id:        uuid.New(),
		UserId:    userId,
		Name:      request.Name,
		Color:     request.Color,
		CreatedAt: time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.CategoryRepository().Create(ctx, &category); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return categoryToResponse(&category), nil
}

func (ds *deckService) ListCategories(ctx context.Context, userId uuid.UUID) ([]*dto.CategoryResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	categories, err := uow.CategoryRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		response = append(response, categoryToResponse(c))
	}
	return response, nil
}

func (ds *deckService) UpdateCategory(ctx context.Context, userId uuid.UUID, request *dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	category, err := ds.findOwnedCategory(ctx, uow, userId, request.Id)
	if err != nil {
		return nil, err
	}

	category.Name = request.Name
	category.Color = request.Color

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.CategoryRepository().Update(ctx, category); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return categoryToResponse(category), nil
}

func (ds *deckService) DeleteCategory(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	if _, err := ds.findOwnedCategory(ctx, uow, userId, id); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.CategoryRepository().Delete(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}

func (ds *deckService) CreateCardSet(ctx context.Context, userId uuid.UUID, request *dto.CreateCardSetRequest) (*dto.CardSetResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	// A referenced category must belong to the same user
	if request.CategoryId != nil {
		if _, err := ds.findOwnedCategory(ctx, uow, userId, *request.CategoryId); err != nil {
			return nil, err
		}
	}

	set := entity.CardSet{
		Id:          uuid.New(),
		UserId:      userId,
		CategoryId:  request.CategoryId,
		Name:        request.Name,
		Description: request.Description,
		CreatedAt:   time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.CardSetRepository().Create(ctx, &set); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return cardSetToResponse(&set), nil
}

func (ds *deckService) ListCardSets(ctx context.Context, userId uuid.UUID) ([]*dto.CardSetResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	sets, err := uow.CardSetRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.CardSetResponse, 0, len(sets))
	for _, s := range sets {
		response = append(response, cardSetToResponse(s))
	}
	return response, nil
}

func (ds *deckService) ShowCardSet(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.CardSetResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	set, err := ds.findOwnedCardSet(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	return cardSetToResponse(set), nil
}

func (ds *deckService) UpdateCardSet(ctx context.Context, userId uuid.UUID, request *dto.UpdateCardSetRequest) (*dto.CardSetResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	set, err := ds.findOwnedCardSet(ctx, uow, userId, request.Id)
	if err != nil {
		return nil, err
	}

	if request.CategoryId != nil {
		if _, err := ds.findOwnedCategory(ctx, uow, userId, *request.CategoryId); err != nil {
			return nil, err
		}
	}

	set.Name = request.Name
	set.Description = request.Description
	set.CategoryId = request.CategoryId

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.CardSetRepository().Update(ctx, set); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return cardSetToResponse(set), nil
}

func (ds *deckService) DeleteCardSet(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	if _, err := ds.findOwnedCardSet(ctx, uow, userId, id); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.CardSetRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.CardRepository().DeleteByCardSetId(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}

func (ds *deckService) CreateCard(ctx context.Context, userId uuid.UUID, request *dto.CreateCardRequest) (*dto.CardResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	if _, err := ds.findOwnedCardSet(ctx, uow, userId, request.CardSetId); err != nil {
		return nil, err
	}

	card := entity.Card{
		Id:              uuid.New(),
		CardSetId:       request.CardSetId,
		Term:            request.Term,
		TermImage:       request.TermImage,
		Definition:      request.Definition,
		DefinitionImage: request.DefinitionImage,
		Examples:        request.Examples,
		CreatedAt:       time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.CardRepository().Create(ctx, &card); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return cardToResponse(&card), nil
}

func (ds *deckService) ListCards(ctx context.Context, userId uuid.UUID, cardSetId uuid.UUID) ([]*dto.CardResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	if _, err := ds.findOwnedCardSet(ctx, uow, userId, cardSetId); err != nil {
		return nil, err
	}

	cards, err := uow.CardRepository().FindAll(ctx,
		specification.ByCardSetID{CardSetID: cardSetId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.CardResponse, 0, len(cards))
	for _, c := range cards {
		response = append(response, cardToResponse(c))
	}
	return response, nil
}

func (ds *deckService) UpdateCard(ctx context.Context, userId uuid.UUID, request *dto.UpdateCardRequest) (*dto.CardResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	card, err := uow.CardRepository().FindOne(ctx, specification.ByID{ID: request.Id})
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apperr.NotFound("card")
	}
	if _, err := ds.findOwnedCardSet(ctx, uow, userId, card.CardSetId); err != nil {
		return nil, err
	}

	card.Term = request.Term
	card.TermImage = request.TermImage
	card.Definition = request.Definition
	card.DefinitionImage = request.DefinitionImage
	card.Examples = request.Examples

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.CardRepository().Update(ctx, card); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return cardToResponse(card), nil
}

func (ds *deckService) DeleteCard(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	card, err := uow.CardRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if card == nil {
		return apperr.NotFound("card")
	}
	if _, err := ds.findOwnedCardSet(ctx, uow, userId, card.CardSetId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.CardRepository().Delete(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}

func (ds *deckService) findOwnedCategory(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Category, error) {
	category, err := uow.CategoryRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperr.NotFound("category")
	}
	return category, nil
}

func (ds *deckService) findOwnedCardSet(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.CardSet, error) {
	set, err := uow.CardSetRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, apperr.NotFound("card set")
	}
	return set, nil
}

func categoryToResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		Id:        c.Id,
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
	}
}

func cardSetToResponse(s *entity.CardSet) *dto.CardSetResponse {
	return &dto.CardSetResponse{
		Id:          s.Id,
		Name:        s.Name,
		Description: s.Description,
		CategoryId:  s.CategoryId,
		CreatedAt:   s.CreatedAt,
	}
}

func cardToResponse(c *entity.Card) *dto.CardResponse {
	return &dto.CardResponse{
		Id:              c.Id,
		CardSetId:       c.CardSetId,
		Term:            c.Term,
		TermImage:       c.TermImage,
		Definition:      c.Definition,
		DefinitionImage: c.DefinitionImage,
		Examples:        c.Examples,
		CreatedAt:       c.CreatedAt,
	}
}
