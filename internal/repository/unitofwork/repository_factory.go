package unitofwork

import "context"

// RepositoryFactory creates transactional units of work.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
