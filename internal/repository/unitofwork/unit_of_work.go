package unitofwork

import (
	"context"

	"cardes-ai-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	CategoryRepository() contract.CategoryRepository
	CardSetRepository() contract.CardSetRepository
	CardRepository() contract.CardRepository
}
