package domain

import (
	"errors"
	"fmt"
)

// Role determines which operations a user may perform: buyers deposit coins
// and purchase products, sellers stock and manage products.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole converts a string into a Role, failing on unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleBuyer, RoleSeller:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

func (r Role) IsBuyer() bool { return r == RoleBuyer }

func (r Role) IsSeller() bool { return r == RoleSeller }

func (r Role) String() string { return string(r) }
