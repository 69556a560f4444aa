package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vendhub/vending-machine/internal/core/domain"
	"github.com/vendhub/vending-machine/internal/core/ports"
)

type vendingService struct {
	users      ports.UserRepository
	products   ports.ProductRepository
	auditTrail ports.ProductEventRepository
	calculator *ChangeCalculator
	uow        ports.UnitOfWork
	publisher  ports.EventPublisher
	log        zerolog.Logger
}

// NewVendingService returns the VendingService implementation. The unit of
// work wraps every multi-write so a purchase commits or rolls back as one.
func NewVendingService(
	users ports.UserRepository,
	products ports.ProductRepository,
	auditTrail ports.ProductEventRepository,
	calculator *ChangeCalculator,
	uow ports.UnitOfWork,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) ports.VendingService {
	return &vendingService{
		users:      users,
		products:   products,
		auditTrail: auditTrail,
		calculator: calculator,
		uow:        uow,
		publisher:  publisher,
		log:        log,
	}
}

// Purchase executes the buy flow: resolve both aggregates, mutate them in
// memory, compute change, then persist user, product, and the withdraw audit
// record inside one transaction.
func (s *vendingService) Purchase(ctx context.Context, input ports.PurchaseInput) (*ports.PurchaseResult, error) {
	userID, err := domain.ParseUserID(input.UserID)
	if err != nil {
		return nil, err
	}
	productID, err := domain.ParseProductID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, input.Quantity)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("purchase: %w", err)
	}
	if !user.CanBuyProduct() {
		return nil, fmt.Errorf("purchase: %w", domain.ErrBuyerRoleRequired)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("purchase: %w", err)
	}
	if !product.IsAvailable() {
		return nil, domain.ErrProductNotAvailable
	}

	totalCost, err := product.Cost().Multiply(input.Quantity)
	if err != nil {
		return nil, err
	}
	if user.Deposit().IsLessThan(totalCost) {
		return nil, fmt.Errorf("%w: deposit %s, needed %s", domain.ErrInsufficientFunds, user.Deposit(), totalCost)
	}

	// Mutate both aggregates in memory before anything is persisted.
	if err := product.Purchase(input.Quantity); err != nil {
		return nil, err
	}
	if err := user.SpendMoney(totalCost); err != nil {
		return nil, err
	}

	change := s.calculator.CalculateChange(user.Deposit())
	if err := user.ResetDeposit(); err != nil {
		return nil, err
	}

	auditRecord, err := domain.NewWithdrawEvent(
		product.ID(),
		input.Quantity,
		product.Cost(),
		user.ID(),
		"",
		fmt.Sprintf("Product purchased by %s", user.Username()),
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(txCtx context.Context) error {
		if err := s.users.Save(txCtx, user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		if err := s.products.Save(txCtx, product); err != nil {
			return fmt.Errorf("save product: %w", err)
		}
		if err := s.auditTrail.Save(txCtx, auditRecord); err != nil {
			return fmt.Errorf("save audit record: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("user_id", input.UserID).
			Str("product_id", input.ProductID).
			Msg("purchase transaction failed")
		return nil, fmt.Errorf("purchase: %w", err)
	}

	s.publishAndClear(user, product)

	s.log.Info().
		Str("user_id", input.UserID).
		Str("product_id", input.ProductID).
		Int("quantity", input.Quantity).
		Int("total_cost_cents", totalCost.Cents()).
		Msg("purchase completed")

	return &ports.PurchaseResult{
		TotalCostCents: totalCost.Cents(),
		Items:          []ports.PurchasedItem{{Name: product.Name(), Quantity: input.Quantity}},
		Change:         change,
	}, nil
}

// Deposit adds a single coin to the buyer's balance.
func (s *vendingService) Deposit(ctx context.Context, input ports.DepositInput) (*ports.DepositResult, error) {
	userID, err := domain.ParseUserID(input.UserID)
	if err != nil {
		return nil, err
	}
	coin, err := domain.NewMoneyFromDenomination(input.AmountCents)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	if err := user.AddDeposit(coin); err != nil {
		return nil, err
	}

	if err := s.users.Save(ctx, user); err != nil {
		s.log.Error().Err(err).Str("user_id", input.UserID).Msg("failed to save deposit")
		return nil, fmt.Errorf("deposit: %w", err)
	}

	s.publishAndClear(user, nil)

	s.log.Info().
		Str("user_id", input.UserID).
		Int("amount_cents", input.AmountCents).
		Int("balance_cents", user.Deposit().Cents()).
		Msg("deposit added")

	return &ports.DepositResult{TotalDepositCents: user.Deposit().Cents()}, nil
}

// ResetDeposit returns the buyer's full balance as coins and zeroes it.
func (s *vendingService) ResetDeposit(ctx context.Context, rawUserID string) (*ports.ResetResult, error) {
	userID, err := domain.ParseUserID(rawUserID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reset deposit: %w", err)
	}

	returned := user.Deposit()
	change := s.calculator.CalculateChange(returned)
	if err := user.ResetDeposit(); err != nil {
		return nil, err
	}

	if err := s.users.Save(ctx, user); err != nil {
		s.log.Error().Err(err).Str("user_id", rawUserID).Msg("failed to save deposit reset")
		return nil, fmt.Errorf("reset deposit: %w", err)
	}

	s.publishAndClear(user, nil)

	s.log.Info().
		Str("user_id", rawUserID).
		Int("returned_cents", returned.Cents()).
		Msg("deposit reset")

	return &ports.ResetResult{TotalReturnedCents: returned.Cents(), Change: change}, nil
}

// publishAndClear drains aggregate events into the publisher after a save.
func (s *vendingService) publishAndClear(user *domain.User, product *domain.Product) {
	if s.publisher == nil {
		return
	}
	if user != nil {
		s.publisher.Publish(user.Events()...)
		user.ClearEvents()
	}
	if product != nil {
		s.publisher.Publish(product.Events()...)
		product.ClearEvents()
	}
}
