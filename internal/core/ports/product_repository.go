package ports

import (
	"context"

	"github.com/vendhub/vending-machine/internal/core/domain"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	FindByID(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	FindBySellerIDAndName(ctx context.Context, sellerID domain.UserID, name string) (*domain.Product, error)
	FindBySellerID(ctx context.Context, sellerID domain.UserID) ([]*domain.Product, error)
	FindAll(ctx context.Context) ([]*domain.Product, error)
	// Save inserts the product or replaces the stored state for an existing id.
	Save(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id domain.ProductID) error
}
