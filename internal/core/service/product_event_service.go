package service

import (
	"context"
	"fmt"

	"github.com/vendhub/vending-machine/internal/core/domain"
	"github.com/vendhub/vending-machine/internal/core/ports"
)

type productEventService struct {
	auditTrail ports.ProductEventRepository
}

// NewProductEventService returns the audit-trail query service.
func NewProductEventService(auditTrail ports.ProductEventRepository) ports.ProductEventService {
	return &productEventService{auditTrail: auditTrail}
}

func (s *productEventService) ListByProduct(ctx context.Context, rawProductID, rawType string, limit int) ([]ports.ProductEventDetail, error) {
	productID, err := domain.ParseProductID(rawProductID)
	if err != nil {
		return nil, err
	}

	var records []*domain.ProductEvent
	if rawType == "" {
		records, err = s.auditTrail.FindByProductID(ctx, productID)
	} else {
		var eventType domain.ProductEventType
		eventType, err = domain.ParseProductEventType(rawType)
		if err != nil {
			return nil, err
		}
		records, err = s.auditTrail.FindByProductIDAndType(ctx, productID, eventType)
	}
	if err != nil {
		return nil, fmt.Errorf("list product events: %w", err)
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return toProductEventDetails(records), nil
}

func (s *productEventService) AuditTrail(ctx context.Context, rawProductID string, limit int) ([]ports.ProductEventDetail, error) {
	productID, err := domain.ParseProductID(rawProductID)
	if err != nil {
		return nil, err
	}
	records, err := s.auditTrail.AuditTrail(ctx, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit trail: %w", err)
	}
	return toProductEventDetails(records), nil
}

func toProductEventDetails(records []*domain.ProductEvent) []ports.ProductEventDetail {
	details := make([]ports.ProductEventDetail, 0, len(records))
	for _, r := range records {
		detail := ports.ProductEventDetail{
			ID:              r.ID().String(),
			ProductID:       r.ProductID().String(),
			EventType:       string(r.EventType()),
			Quantity:        r.Quantity(),
			UnitPriceCents:  r.UnitPrice().Cents(),
			TotalValueCents: r.TotalValue().Cents(),
			CreatedBy:       r.CreatedBy().String(),
			CreatedAt:       r.CreatedAt(),
			Description:     r.Description(),
		}
		if meta, ok := r.Metadata().(domain.WithdrawMetadata); ok {
			detail.PurchaseOrderID = meta.PurchaseOrderID
		}
		details = append(details, detail)
	}
	return details
}
