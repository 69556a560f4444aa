package ports

import (
	"context"
	"time"
)

// CreateProductInput carries the data needed to register a product.
type CreateProductInput struct {
	Name            string
	CostCents       int
	AmountAvailable int
	SellerID        string
}

// UpdateProductInput carries a partial product update. Nil fields are left
// untouched.
type UpdateProductInput struct {
	ProductID       string
	SellerID        string
	Name            *string
	CostCents       *int
	AmountAvailable *int
}

// ProductDetail is the read view of a product.
type ProductDetail struct {
	ID              string
	Name            string
	CostCents       int
	AmountAvailable int
	SellerID        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProductService defines seller-facing product management use-cases.
type ProductService interface {
	// CreateProduct registers a product and returns its id. Initial stock
	// greater than zero produces one top_up audit record.
	CreateProduct(ctx context.Context, input CreateProductInput) (string, error)
	GetProduct(ctx context.Context, id string) (*ProductDetail, error)
	ListProducts(ctx context.Context) ([]ProductDetail, error)
	ListBySeller(ctx context.Context, sellerID string) ([]ProductDetail, error)
	UpdateProduct(ctx context.Context, input UpdateProductInput) error
	DeleteProduct(ctx context.Context, productID, sellerID string) error
}

// ProductEventDetail is the read view of one audit-trail record.
type ProductEventDetail struct {
	ID              string
	ProductID       string
	EventType       string
	Quantity        int
	UnitPriceCents  int
	TotalValueCents int
	CreatedBy       string
	CreatedAt       time.Time
	Description     string
	PurchaseOrderID string
}

// ProductEventService defines audit-trail queries.
type ProductEventService interface {
	// ListByProduct returns records for a product, optionally filtered by
	// event type ("" = all). A limit <= 0 means no limit.
	ListByProduct(ctx context.Context, productID, eventType string, limit int) ([]ProductEventDetail, error)
	AuditTrail(ctx context.Context, productID string, limit int) ([]ProductEventDetail, error)
}
