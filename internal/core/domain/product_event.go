package domain

import (
	"errors"
	"fmt"
	"time"
)

// ProductEventType classifies an inventory movement.
type ProductEventType string

const (
	// EventTopUp records stock entering the machine.
	EventTopUp ProductEventType = "top_up"
	// EventWithdraw records stock leaving the machine.
	EventWithdraw ProductEventType = "withdraw"
)

var ErrInvalidEventType = errors.New("invalid product event type")

// ParseProductEventType converts a string into a ProductEventType.
func ParseProductEventType(s string) (ProductEventType, error) {
	switch ProductEventType(s) {
	case EventTopUp, EventWithdraw:
		return ProductEventType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEventType, s)
}

// EventMetadata is the tagged extra payload carried by a ProductEvent.
// Each event type has its own variant; there is no open-ended map.
type EventMetadata interface {
	isEventMetadata()
}

// TopUpMetadata accompanies top_up events. Currently empty; kept as a
// distinct type so new fields never leak into withdraw records.
type TopUpMetadata struct{}

func (TopUpMetadata) isEventMetadata() {}

// WithdrawMetadata accompanies withdraw events.
type WithdrawMetadata struct {
	// PurchaseOrderID links the withdrawal to an external order, when known.
	PurchaseOrderID string
}

func (WithdrawMetadata) isEventMetadata() {}

// ProductEvent is one immutable line of the inventory audit trail. Every
// stock-increasing or stock-decreasing operation produces exactly one.
type ProductEvent struct {
	id          ProductEventID
	productID   ProductID
	eventType   ProductEventType
	quantity    int
	unitPrice   Money
	totalValue  Money
	createdBy   UserID
	createdAt   time.Time
	description string
	metadata    EventMetadata
}

// NewTopUpEvent records quantity units entering stock.
func NewTopUpEvent(productID ProductID, quantity int, unitPrice Money, sellerID UserID, description string, now time.Time) (*ProductEvent, error) {
	if description == "" {
		description = "Product inventory top up"
	}
	return newProductEvent(productID, EventTopUp, quantity, unitPrice, sellerID, description, TopUpMetadata{}, now)
}

// NewWithdrawEvent records quantity units leaving stock.
func NewWithdrawEvent(productID ProductID, quantity int, unitPrice Money, buyerID UserID, purchaseOrderID, description string, now time.Time) (*ProductEvent, error) {
	if description == "" {
		description = "Product purchased"
	}
	return newProductEvent(productID, EventWithdraw, quantity, unitPrice, buyerID, description, WithdrawMetadata{PurchaseOrderID: purchaseOrderID}, now)
}

func newProductEvent(productID ProductID, eventType ProductEventType, quantity int, unitPrice Money, createdBy UserID, description string, metadata EventMetadata, now time.Time) (*ProductEvent, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	totalValue, err := unitPrice.Multiply(quantity)
	if err != nil {
		return nil, err
	}

	return &ProductEvent{
		id:          NewProductEventID(),
		productID:   productID,
		eventType:   eventType,
		quantity:    quantity,
		unitPrice:   unitPrice,
		totalValue:  totalValue,
		createdBy:   createdBy,
		createdAt:   now,
		description: description,
		metadata:    metadata,
	}, nil
}

// RehydrateProductEvent rebuilds a record from persisted state.
func RehydrateProductEvent(id ProductEventID, productID ProductID, eventType ProductEventType, quantity int, unitPrice, totalValue Money, createdBy UserID, createdAt time.Time, description string, metadata EventMetadata) *ProductEvent {
	return &ProductEvent{
		id:          id,
		productID:   productID,
		eventType:   eventType,
		quantity:    quantity,
		unitPrice:   unitPrice,
		totalValue:  totalValue,
		createdBy:   createdBy,
		createdAt:   createdAt,
		description: description,
		metadata:    metadata,
	}
}

func (e *ProductEvent) ID() ProductEventID          { return e.id }
func (e *ProductEvent) ProductID() ProductID        { return e.productID }
func (e *ProductEvent) EventType() ProductEventType { return e.eventType }
func (e *ProductEvent) Quantity() int               { return e.quantity }
func (e *ProductEvent) UnitPrice() Money            { return e.unitPrice }
func (e *ProductEvent) TotalValue() Money           { return e.totalValue }
func (e *ProductEvent) CreatedBy() UserID           { return e.createdBy }
func (e *ProductEvent) CreatedAt() time.Time        { return e.createdAt }
func (e *ProductEvent) Description() string         { return e.description }
func (e *ProductEvent) Metadata() EventMetadata     { return e.metadata }

func (e *ProductEvent) IsTopUp() bool    { return e.eventType == EventTopUp }
func (e *ProductEvent) IsWithdraw() bool { return e.eventType == EventWithdraw }

// InventoryImpact returns the signed stock delta this record represents.
func (e *ProductEvent) InventoryImpact() int {
	if e.IsTopUp() {
		return e.quantity
	}
	return -e.quantity
}
