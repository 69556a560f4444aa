package ports

import (
	"context"

	"github.com/vendhub/vending-machine/internal/core/domain"
)

// UnitOfWork runs fn inside a single storage transaction. Repository calls
// made with the context passed to fn join that transaction, so the
// two-aggregate purchase write (user, product, audit record) either fully
// commits or fully rolls back.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(txCtx context.Context) error) error
}

// EventPublisher receives domain events drained from an aggregate after a
// successful save. Implementations must not block the caller.
type EventPublisher interface {
	Publish(events ...domain.Event)
}
