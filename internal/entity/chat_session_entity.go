package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is a titled container for one user's ordered exchange
// with the assistant. Title may be auto-derived from the first message.
type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
