package domain

import (
	"errors"
	"fmt"
)

// Denominations lists the coin values the machine accepts, in cents,
// in descending order. Change is always paid out largest-first.
var Denominations = []int{100, 50, 20, 10, 5}

var ErrInvalidAmount = errors.New("money amount cannot be negative")
var ErrInvalidDenomination = errors.New("invalid coin denomination")
var ErrInsufficientFunds = errors.New("insufficient funds")

// Money is an immutable cent-denominated amount. The zero value is zero cents.
// Every operation returns a new value; a Money can never hold a negative amount.
type Money struct {
	cents int
}

// ZeroMoney returns the zero amount.
func ZeroMoney() Money {
	return Money{}
}

// NewMoney builds a Money from an arbitrary non-negative cent amount.
func NewMoney(cents int) (Money, error) {
	if cents < 0 {
		return Money{}, fmt.Errorf("%w: %d", ErrInvalidAmount, cents)
	}
	return Money{cents: cents}, nil
}

// NewMoneyFromDenomination builds a Money from a single accepted coin value.
// This is the only constructor used for deposits.
func NewMoneyFromDenomination(cents int) (Money, error) {
	for _, d := range Denominations {
		if cents == d {
			return Money{cents: cents}, nil
		}
	}
	return Money{}, fmt.Errorf("%w: %d (accepted: 5, 10, 20, 50, 100)", ErrInvalidDenomination, cents)
}

// Cents returns the amount in cents.
func (m Money) Cents() int {
	return m.cents
}

// Add returns the sum of both amounts.
func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// Subtract returns m minus other, or ErrInsufficientFunds when the result
// would be negative.
func (m Money) Subtract(other Money) (Money, error) {
	if m.cents < other.cents {
		return Money{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, m.cents, other.cents)
	}
	return Money{cents: m.cents - other.cents}, nil
}

// Multiply returns m times count. Count must not be negative.
func (m Money) Multiply(count int) (Money, error) {
	if count < 0 {
		return Money{}, fmt.Errorf("%w: multiplier %d", ErrInvalidAmount, count)
	}
	return Money{cents: m.cents * count}, nil
}

// IsLessThan reports whether m is strictly smaller than other.
func (m Money) IsLessThan(other Money) bool {
	return m.cents < other.cents
}

// IsZero reports whether the amount is zero cents.
func (m Money) IsZero() bool {
	return m.cents == 0
}

// String renders the amount as a decimal, e.g. 170 cents -> "1.70".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m.cents/100, m.cents%100)
}

// Coin is one line of a change breakdown: how many coins of one denomination.
type Coin struct {
	Denomination int `json:"denomination"`
	Count        int `json:"count"`
}
