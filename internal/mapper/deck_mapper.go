package mapper

import (
	"encoding/json"
	"time"

	"cardes-ai-be/internal/entity"
	"cardes-ai-be/internal/model"

	"gorm.io/datatypes"
)

type DeckMapper struct{}

func NewDeckMapper() *DeckMapper {
	return &DeckMapper{}
}

func (m *DeckMapper) CategoryToEntity(c *model.Category) *entity.Category {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Category{
		Id:        c.Id,
		UserId:    c.UserId,
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *DeckMapper) CategoryToModel(c *entity.Category) *model.Category {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Category{
		Id:        c.Id,
		UserId:    c.UserId,
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *DeckMapper) CardSetToEntity(s *model.CardSet) *entity.CardSet {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.CardSet{
		Id:          s.Id,
		UserId:      s.UserId,
		CategoryId:  s.CategoryId,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *DeckMapper) CardSetToModel(s *entity.CardSet) *model.CardSet {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.CardSet{
		Id:          s.Id,
		UserId:      s.UserId,
		CategoryId:  s.CategoryId,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *DeckMapper) CardToEntity(c *model.Card) *entity.Card {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	var examples []string
	if len(c.Examples) > 0 {
		// Malformed stored JSON degrades to no examples rather than an error
		_ = json.Unmarshal(c.Examples, &examples)
	}

	return &entity.Card{
		Id:              c.Id,
		CardSetId:       c.CardSetId,
		Term:            c.Term,
		TermImage:       c.TermImage,
		Definition:      c.Definition,
		DefinitionImage: c.DefinitionImage,
		Examples:        examples,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *DeckMapper) CardToModel(c *entity.Card) *model.Card {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	var examples datatypes.JSON
	if len(c.Examples) > 0 {
		raw, err := json.Marshal(c.Examples)
		if err == nil {
			examples = datatypes.JSON(raw)
		}
	}

	return &model.Card{
		Id:              c.Id,
		CardSetId:       c.CardSetId,
		Term:            c.Term,
		TermImage:       c.TermImage,
		Definition:      c.Definition,
		DefinitionImage: c.DefinitionImage,
		Examples:        examples,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}
