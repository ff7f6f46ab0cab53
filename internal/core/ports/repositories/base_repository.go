package repositories

import "context"

// TransactionManager runs a unit of work. Repository calls made with the
// context handed to fn join the same database transaction; the work commits
// when fn returns nil and rolls back otherwise. Nested calls join the outer
// unit of work.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
