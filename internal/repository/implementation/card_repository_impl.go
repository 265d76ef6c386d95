package implementation

import (
	"context"
	"errors"

	"cardes-ai-be/internal/entity"
	"cardes-ai-be/internal/mapper"
	"cardes-ai-be/internal/model"
	"cardes-ai-be/internal/repository/contract"
	"cardes-ai-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CardRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DeckMapper
}

func NewCardRepository(db *gorm.DB) contract.CardRepository {
	return &CardRepositoryImpl{
		db:     db,
		mapper: mapper.NewDeckMapper(),
	}
}

func (r *CardRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CardRepositoryImpl) Create(ctx context.Context, card *entity.Card) error {
	m := r.mapper.CardToModel(card)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*card = *r.mapper.CardToEntity(m)
	return nil
}

func (r *CardRepositoryImpl) Update(ctx context.Context, card *entity.Card) error {
	m := r.mapper.CardToModel(card)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*card = *r.mapper.CardToEntity(m)
	return nil
}

func (r *CardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Card{}, id).Error
}

func (r *CardRepositoryImpl) DeleteByCardSetId(ctx context.Context, cardSetId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("card_set_id = ?", cardSetId).Delete(&model.Card{}).Error
}

func (r *CardRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Card, error) {
	var m model.Card
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CardToEntity(&m), nil
}

func (r *CardRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Card, error) {
	var models []*model.Card
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Card, len(models))
	for i, m := range models {
		entities[i] = r.mapper.CardToEntity(m)
	}
	return entities, nil
}
