package service

import (
	"github.com/vendhub/vending-machine/internal/core/domain"
)

// ChangeCalculator breaks an amount into coins using a greedy largest-first
// walk over the accepted denominations. Deterministic and stateless.
//
// The breakdown sums to the full amount whenever the amount is a multiple of
// 5 cents, which holds for every balance built from accepted coins. Residual
// cents below the smallest coin are not representable and stay unreturned;
// RemainderCents exposes them so callers can decide what to do.
type ChangeCalculator struct{}

func NewChangeCalculator() *ChangeCalculator {
	return &ChangeCalculator{}
}

// CalculateChange returns the coin breakdown for amount, largest
// denomination first, omitting zero-count lines.
func (c *ChangeCalculator) CalculateChange(amount domain.Money) []domain.Coin {
	var change []domain.Coin
	remaining := amount.Cents()

	for _, denomination := range domain.Denominations {
		if remaining < denomination {
			continue
		}
		count := remaining / denomination
		change = append(change, domain.Coin{Denomination: denomination, Count: count})
		remaining -= count * denomination
	}

	return change
}

// RemainderCents returns the part of amount no coin combination can cover.
func (c *ChangeCalculator) RemainderCents(amount domain.Money) int {
	smallest := domain.Denominations[len(domain.Denominations)-1]
	return amount.Cents() % smallest
}
