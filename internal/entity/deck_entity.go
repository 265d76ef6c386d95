package entity

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Name      string
	Color     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type CardSet struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	CategoryId  *uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

type Card struct {
	Id              uuid.UUID
	CardSetId       uuid.UUID
	Term            string
	TermImage       *string
	Definition      string
	DefinitionImage *string
	Examples        []string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}
