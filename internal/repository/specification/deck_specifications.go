package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByCardSetID struct {
	CardSetID uuid.UUID
}

func (s ByCardSetID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("card_set_id = ?", s.CardSetID)
}

type ByCategoryID struct {
	CategoryID uuid.UUID
}

func (s ByCategoryID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category_id = ?", s.CategoryID)
}
