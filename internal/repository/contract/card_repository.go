package contract

import (
	"context"

	"cardes-ai-be/internal/entity"
	"cardes-ai-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CardRepository interface {
	Create(ctx context.Context, card *entity.Card) error
	Update(ctx context.Context, card *entity.Card) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByCardSetId(ctx context.Context, cardSetId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Card, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Card, error)
}
