package ports

import (
	"context"

	"github.com/vendhub/vending-machine/internal/core/domain"
)

// PurchaseInput carries a buy command from the transport layer.
type PurchaseInput struct {
	UserID    string
	ProductID string
	Quantity  int
}

// PurchasedItem is one line of a purchase receipt.
type PurchasedItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// PurchaseResult is the receipt returned after a successful purchase.
type PurchaseResult struct {
	TotalCostCents int             `json:"total_cost_cents"`
	Items          []PurchasedItem `json:"items"`
	Change         []domain.Coin   `json:"change"`
}

// DepositInput carries a single-coin deposit command.
type DepositInput struct {
	UserID      string
	AmountCents int
}

// DepositResult reports the buyer's balance after a deposit.
type DepositResult struct {
	TotalDepositCents int `json:"total_deposit_cents"`
}

// ResetResult reports what the machine returned when a deposit was reset.
type ResetResult struct {
	TotalReturnedCents int           `json:"total_returned_cents"`
	Change             []domain.Coin `json:"change"`
}

// VendingService is the transactional purchase core: coin deposits, deposit
// reset, and the two-aggregate purchase flow.
type VendingService interface {
	Purchase(ctx context.Context, input PurchaseInput) (*PurchaseResult, error)
	Deposit(ctx context.Context, input DepositInput) (*DepositResult, error)
	ResetDeposit(ctx context.Context, userID string) (*ResetResult, error)
}
