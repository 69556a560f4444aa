package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vendhub/vending-machine/internal/core/domain"
	"github.com/vendhub/vending-machine/internal/core/ports"
)

type productService struct {
	products   ports.ProductRepository
	users      ports.UserRepository
	auditTrail ports.ProductEventRepository
	uow        ports.UnitOfWork
	publisher  ports.EventPublisher
	log        zerolog.Logger
}

// NewProductService returns the ProductService implementation.
func NewProductService(
	products ports.ProductRepository,
	users ports.UserRepository,
	auditTrail ports.ProductEventRepository,
	uow ports.UnitOfWork,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) ports.ProductService {
	return &productService{
		products:   products,
		users:      users,
		auditTrail: auditTrail,
		uow:        uow,
		publisher:  publisher,
		log:        log,
	}
}

// CreateProduct registers a product for a seller. Initial stock above zero
// writes one top_up audit record in the same transaction as the product.
func (s *productService) CreateProduct(ctx context.Context, input ports.CreateProductInput) (string, error) {
	sellerID, err := domain.ParseUserID(input.SellerID)
	if err != nil {
		return "", err
	}
	cost, err := domain.NewMoney(input.CostCents)
	if err != nil {
		return "", err
	}

	seller, err := s.users.FindByID(ctx, sellerID)
	if err != nil {
		return "", fmt.Errorf("create product: %w", err)
	}
	if !seller.CanManageProducts() {
		return "", fmt.Errorf("create product: %w", domain.ErrSellerRoleRequired)
	}

	existing, err := s.products.FindBySellerIDAndName(ctx, sellerID, input.Name)
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
		return "", fmt.Errorf("create product: %w", err)
	}
	if existing != nil {
		return "", domain.ErrProductExists
	}

	now := time.Now().UTC()
	product, err := domain.NewProduct(domain.NewProductID(), input.Name, cost, input.AmountAvailable, sellerID, now)
	if err != nil {
		return "", err
	}

	var topUp *domain.ProductEvent
	if input.AmountAvailable > 0 {
		topUp, err = domain.NewTopUpEvent(
			product.ID(),
			input.AmountAvailable,
			product.Cost(),
			sellerID,
			fmt.Sprintf("Initial inventory for product: %s", product.Name()),
			now,
		)
		if err != nil {
			return "", err
		}
	}

	err = s.uow.Execute(ctx, func(txCtx context.Context) error {
		if err := s.products.Save(txCtx, product); err != nil {
			return fmt.Errorf("save product: %w", err)
		}
		if topUp != nil {
			if err := s.auditTrail.Save(txCtx, topUp); err != nil {
				return fmt.Errorf("save top up record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("seller_id", input.SellerID).Str("name", input.Name).Msg("failed to create product")
		return "", fmt.Errorf("create product: %w", err)
	}

	if s.publisher != nil {
		s.publisher.Publish(product.Events()...)
		product.ClearEvents()
	}

	s.log.Info().
		Str("product_id", product.ID().String()).
		Str("seller_id", input.SellerID).
		Int("amount_available", input.AmountAvailable).
		Msg("product created")

	return product.ID().String(), nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*ports.ProductDetail, error) {
	productID, err := domain.ParseProductID(id)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	detail := toProductDetail(product)
	return &detail, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]ports.ProductDetail, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return toProductDetails(products), nil
}

func (s *productService) ListBySeller(ctx context.Context, rawSellerID string) ([]ports.ProductDetail, error) {
	sellerID, err := domain.ParseUserID(rawSellerID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindBySellerID(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list by seller: %w", err)
	}
	return toProductDetails(products), nil
}

// UpdateProduct applies a partial update. Stock changes write a matching
// audit record (top_up when stock grows, withdraw when it shrinks) in the
// same transaction.
func (s *productService) UpdateProduct(ctx context.Context, input ports.UpdateProductInput) error {
	productID, err := domain.ParseProductID(input.ProductID)
	if err != nil {
		return err
	}
	sellerID, err := domain.ParseUserID(input.SellerID)
	if err != nil {
		return err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if !product.CanBeUpdatedBy(sellerID) {
		return fmt.Errorf("update product: %w", domain.ErrNotProductOwner)
	}

	if input.Name != nil {
		if err := product.UpdateName(*input.Name); err != nil {
			return err
		}
	}
	if input.CostCents != nil {
		cost, err := domain.NewMoney(*input.CostCents)
		if err != nil {
			return err
		}
		if err := product.UpdateCost(cost); err != nil {
			return err
		}
	}

	var stockRecord *domain.ProductEvent
	if input.AmountAvailable != nil {
		previous := product.AmountAvailable()
		if err := product.UpdateAmount(*input.AmountAvailable); err != nil {
			return err
		}
		stockRecord, err = stockChangeRecord(product, sellerID, previous, *input.AmountAvailable)
		if err != nil {
			return err
		}
	}

	err = s.uow.Execute(ctx, func(txCtx context.Context) error {
		if err := s.products.Save(txCtx, product); err != nil {
			return fmt.Errorf("save product: %w", err)
		}
		if stockRecord != nil {
			if err := s.auditTrail.Save(txCtx, stockRecord); err != nil {
				return fmt.Errorf("save stock record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("product_id", input.ProductID).Msg("failed to update product")
		return fmt.Errorf("update product: %w", err)
	}

	s.log.Info().Str("product_id", input.ProductID).Msg("product updated")
	return nil
}

func (s *productService) DeleteProduct(ctx context.Context, rawProductID, rawSellerID string) error {
	productID, err := domain.ParseProductID(rawProductID)
	if err != nil {
		return err
	}
	sellerID, err := domain.ParseUserID(rawSellerID)
	if err != nil {
		return err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !product.CanBeUpdatedBy(sellerID) {
		return fmt.Errorf("delete product: %w", domain.ErrNotProductOwner)
	}

	if err := s.products.Delete(ctx, productID); err != nil {
		s.log.Error().Err(err).Str("product_id", rawProductID).Msg("failed to delete product")
		return fmt.Errorf("delete product: %w", err)
	}

	s.log.Info().Str("product_id", rawProductID).Msg("product deleted")
	return nil
}

// stockChangeRecord builds the audit record for a manual stock adjustment,
// or nil when the count did not change.
func stockChangeRecord(product *domain.Product, sellerID domain.UserID, previous, current int) (*domain.ProductEvent, error) {
	now := time.Now().UTC()
	switch {
	case current > previous:
		return domain.NewTopUpEvent(
			product.ID(),
			current-previous,
			product.Cost(),
			sellerID,
			fmt.Sprintf("Stock adjusted for product: %s", product.Name()),
			now,
		)
	case current < previous:
		return domain.NewWithdrawEvent(
			product.ID(),
			previous-current,
			product.Cost(),
			sellerID,
			"",
			fmt.Sprintf("Stock adjusted for product: %s", product.Name()),
			now,
		)
	default:
		return nil, nil
	}
}

func toProductDetail(p *domain.Product) ports.ProductDetail {
	return ports.ProductDetail{
		ID:              p.ID().String(),
		Name:            p.Name(),
		CostCents:       p.Cost().Cents(),
		AmountAvailable: p.AmountAvailable(),
		SellerID:        p.SellerID().String(),
		CreatedAt:       p.CreatedAt(),
		UpdatedAt:       p.UpdatedAt(),
	}
}

func toProductDetails(products []*domain.Product) []ports.ProductDetail {
	details := make([]ports.ProductDetail, 0, len(products))
	for _, p := range products {
		details = append(details, toProductDetail(p))
	}
	return details
}
