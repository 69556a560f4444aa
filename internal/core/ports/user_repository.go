package ports

import (
	"context"

	"github.com/vendhub/vending-machine/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Save inserts the user or replaces the stored state for an existing id.
	Save(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id domain.UserID) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	Count(ctx context.Context) (int64, error)
}
