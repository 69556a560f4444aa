package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInvalidID = errors.New("invalid identifier")

// UserID identifies a user account. Equality is value-based.
type UserID struct {
	value string
}

// NewUserID generates a random UserID.
func NewUserID() UserID {
	return UserID{value: uuid.NewString()}
}

// ParseUserID builds a UserID from a trusted string, failing on malformed input.
func ParseUserID(s string) (UserID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return UserID{}, fmt.Errorf("%w: user id %q", ErrInvalidID, s)
	}
	return UserID{value: s}, nil
}

func (id UserID) String() string { return id.value }

// Equals reports value equality with another UserID.
func (id UserID) Equals(other UserID) bool { return id.value == other.value }

// ProductID identifies a product.
type ProductID struct {
	value string
}

func NewProductID() ProductID {
	return ProductID{value: uuid.NewString()}
}

func ParseProductID(s string) (ProductID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return ProductID{}, fmt.Errorf("%w: product id %q", ErrInvalidID, s)
	}
	return ProductID{value: s}, nil
}

func (id ProductID) String() string { return id.value }

func (id ProductID) Equals(other ProductID) bool { return id.value == other.value }

// ProductEventID identifies an audit-trail record.
type ProductEventID struct {
	value string
}

func NewProductEventID() ProductEventID {
	return ProductEventID{value: uuid.NewString()}
}

func ParseProductEventID(s string) (ProductEventID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return ProductEventID{}, fmt.Errorf("%w: product event id %q", ErrInvalidID, s)
	}
	return ProductEventID{value: s}, nil
}

func (id ProductEventID) String() string { return id.value }
