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

type CardSetRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DeckMapper
}

func NewCardSetRepository(db *gorm.DB) contract.CardSetRepository {
	return &CardSetRepositoryImpl{
		db:     db,
		mapper: mapper.NewDeckMapper(),
	}
}

func (r *CardSetRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CardSetRepositoryImpl) Create(ctx context.Context, set *entity.CardSet) error {
	m := r.mapper.CardSetToModel(set)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*set = *r.mapper.CardSetToEntity(m)
	return nil
}

func (r *CardSetRepositoryImpl) Update(ctx context.Context, set *entity.CardSet) error {
	m := r.mapper.CardSetToModel(set)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*set = *r.mapper.CardSetToEntity(m)
	return nil
}

func (r *CardSetRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CardSet{}, id).Error
}

func (r *CardSetRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CardSet, error) {
	var m model.CardSet
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CardSetToEntity(&m), nil
}

func (r *CardSetRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CardSet, error) {
	var models []*model.CardSet
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CardSet, len(models))
	for i, m := range models {
		entities[i] = r.mapper.CardSetToEntity(m)
	}
	return entities, nil
}
