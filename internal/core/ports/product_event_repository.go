package ports

import (
	"context"
	"time"

	"github.com/vendhub/vending-machine/internal/core/domain"
)

// ProductEventRepository persists and queries the append-only audit trail.
// Records are inserted once and never updated.
type ProductEventRepository interface {
	Save(ctx context.Context, event *domain.ProductEvent) error
	FindByProductID(ctx context.Context, productID domain.ProductID) ([]*domain.ProductEvent, error)
	FindByProductIDAndType(ctx context.Context, productID domain.ProductID, eventType domain.ProductEventType) ([]*domain.ProductEvent, error)
	FindByCreatedBy(ctx context.Context, userID domain.UserID) ([]*domain.ProductEvent, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]*domain.ProductEvent, error)
	// AuditTrail returns the most recent records for a product, newest first.
	// A limit <= 0 means no limit.
	AuditTrail(ctx context.Context, productID domain.ProductID, limit int) ([]*domain.ProductEvent, error)
}
