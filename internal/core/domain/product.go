package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrProductNotFound = errors.New("product not found")
var ErrProductExists = errors.New("product name already exists for this seller")
var ErrProductNotAvailable = errors.New("product is not available")
var ErrInsufficientStock = errors.New("insufficient product quantity")
var ErrNegativeStock = errors.New("amount available cannot be negative")
var ErrInvalidCost = errors.New("product cost must be greater than zero")
var ErrInvalidQuantity = errors.New("quantity must be greater than zero")
var ErrProductNameRequired = errors.New("product name is required")
var ErrNotProductOwner = errors.New("product belongs to another seller")

// Product is the stock-keeping aggregate root, owned by a single seller.
// It references the seller only by id; cross-aggregate coordination is the
// job of the service layer.
type Product struct {
	id              ProductID
	name            string
	cost            Money
	amountAvailable int
	sellerID        UserID
	createdAt       time.Time
	updatedAt       time.Time

	events []Event
}

// NewProduct creates a product with the given initial stock and records a
// ProductCreated event. Cost must be strictly positive.
func NewProduct(id ProductID, name string, cost Money, amountAvailable int, sellerID UserID, now time.Time) (*Product, error) {
	if name == "" {
		return nil, ErrProductNameRequired
	}
	if cost.IsZero() {
		return nil, ErrInvalidCost
	}
	if amountAvailable < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeStock, amountAvailable)
	}

	p := &Product{
		id:              id,
		name:            name,
		cost:            cost,
		amountAvailable: amountAvailable,
		sellerID:        sellerID,
		createdAt:       now,
		updatedAt:       now,
	}
	p.record(ProductCreated{
		ProductID:       id.String(),
		Name:            name,
		CostCents:       cost.Cents(),
		AmountAvailable: amountAvailable,
		SellerID:        sellerID.String(),
	})
	return p, nil
}

// RehydrateProduct rebuilds a product from persisted state without emitting events.
func RehydrateProduct(id ProductID, name string, cost Money, amountAvailable int, sellerID UserID, createdAt, updatedAt time.Time) *Product {
	return &Product{
		id:              id,
		name:            name,
		cost:            cost,
		amountAvailable: amountAvailable,
		sellerID:        sellerID,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (p *Product) ID() ProductID        { return p.id }
func (p *Product) Name() string         { return p.name }
func (p *Product) Cost() Money          { return p.cost }
func (p *Product) AmountAvailable() int { return p.amountAvailable }
func (p *Product) SellerID() UserID     { return p.sellerID }
func (p *Product) CreatedAt() time.Time { return p.createdAt }
func (p *Product) UpdatedAt() time.Time { return p.updatedAt }

// IsAvailable reports whether at least one unit is in stock.
func (p *Product) IsAvailable() bool {
	return p.amountAvailable > 0
}

// CanBeUpdatedBy reports whether userID owns this product.
func (p *Product) CanBeUpdatedBy(userID UserID) bool {
	return p.sellerID.Equals(userID)
}

// Purchase decrements stock by quantity. Stock is left unchanged on failure.
func (p *Product) Purchase(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if !p.IsAvailable() {
		return ErrProductNotAvailable
	}
	if quantity > p.amountAvailable {
		return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, quantity, p.amountAvailable)
	}

	p.amountAvailable -= quantity
	p.touch()
	p.record(ProductPurchased{
		ProductID: p.id.String(),
		Name:      p.name,
		Quantity:  quantity,
		Remaining: p.amountAvailable,
		CostCents: p.cost.Cents(),
		SellerID:  p.sellerID.String(),
	})
	return nil
}

// UpdateAmount replaces the available stock count.
func (p *Product) UpdateAmount(newAmount int) error {
	if newAmount < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeStock, newAmount)
	}
	p.amountAvailable = newAmount
	p.touch()
	return nil
}

// UpdateCost replaces the unit cost. Cost must remain strictly positive.
func (p *Product) UpdateCost(cost Money) error {
	if cost.IsZero() {
		return ErrInvalidCost
	}
	p.cost = cost
	p.touch()
	return nil
}

// UpdateName replaces the display name.
func (p *Product) UpdateName(name string) error {
	if name == "" {
		return ErrProductNameRequired
	}
	p.name = name
	p.touch()
	return nil
}

// Events returns the domain events accumulated since the last ClearEvents.
func (p *Product) Events() []Event {
	return p.events
}

// ClearEvents drops accumulated events. Call after the aggregate is persisted.
func (p *Product) ClearEvents() {
	p.events = nil
}

func (p *Product) record(e Event) {
	p.events = append(p.events, e)
}

func (p *Product) touch() {
	p.updatedAt = time.Now().UTC()
}
