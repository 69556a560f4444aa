package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// UnitOfWork implements ports.UnitOfWork on a MongoDB session transaction.
// Repository calls made with the session context join the transaction, so
// the purchase write (user, product, audit record) commits or aborts as one.
// Requires a replica set or sharded deployment.
type UnitOfWork struct {
	client *mongo.Client
}

func NewUnitOfWork(client *mongo.Client) *UnitOfWork {
	return &UnitOfWork{client: client}
}

func (u *UnitOfWork) Execute(ctx context.Context, fn func(txCtx context.Context) error) error {
	session, err := u.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}
