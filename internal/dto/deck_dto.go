package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"omitempty,max=20"`
}

type UpdateCategoryRequest struct {
	Id    uuid.UUID `json:"-"`
	Name  string    `json:"name" validate:"required,max=100"`
	Color string    `json:"color" validate:"omitempty,max=20"`
}

type CategoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateCardSetRequest struct {
	Name        string     `json:"name" validate:"required,max=150"`
	Description string     `json:"description" validate:"omitempty,max=500"`
	CategoryId  *uuid.UUID `json:"category_id"`
}

type UpdateCardSetRequest struct {
	Id          uuid.UUID  `json:"-"`
	Name        string     `json:"name" validate:"required,max=150"`
	Description string     `json:"description" validate:"omitempty,max=500"`
	CategoryId  *uuid.UUID `json:"category_id"`
}

type CardSetResponse struct {
	Id          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CategoryId  *uuid.UUID `json:"category_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

type CreateCardRequest struct {
	CardSetId       uuid.UUID `json:"card_set_id" validate:"required"`
	Term            string    `json:"term" validate:"required,max=255"`
	TermImage       *string   `json:"term_image"`
	Definition      string    `json:"definition" validate:"required"`
	DefinitionImage *string   `json:"definition_image"`
	Examples        []string  `json:"examples" validate:"omitempty,max=10"`
}

type UpdateCardRequest struct {
	Id              uuid.UUID `json:"-"`
	Term            string    `json:"term" validate:"required,max=255"`
	TermImage       *string   `json:"term_image"`
	Definition      string    `json:"definition" validate:"required"`
	DefinitionImage *string   `json:"definition_image"`
	Examples        []string  `json:"examples" validate:"omitempty,max=10"`
}

type CardResponse struct {
	Id              uuid.UUID `json:"id"`
	CardSetId       uuid.UUID `json:"card_set_id"`
	Term            string    `json:"term"`
	TermImage       *string   `json:"term_image"`
	Definition      string    `json:"definition"`
	DefinitionImage *string   `json:"definition_image"`
	Examples        []string  `json:"examples"`
	CreatedAt       time.Time `json:"created_at"`
}
