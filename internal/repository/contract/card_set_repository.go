package contract

import (
	"context"

	"cardes-ai-be/internal/entity"
	"cardes-ai-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CardSetRepository interface {
	Create(ctx context.Context, set *entity.CardSet) error
	Update(ctx context.Context, set *entity.CardSet) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CardSet, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CardSet, error)
}
