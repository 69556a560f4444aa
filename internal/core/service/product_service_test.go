package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vendhub/vending-machine/internal/core/domain"
	"github.com/vendhub/vending-machine/internal/core/ports"
)

type productFixture struct {
	products *stubProductRepo
	users    *stubUserRepo
	events   *stubEventRepo
	uow      *stubUnitOfWork
	pub      *stubPublisher
	svc      ports.ProductService
}

func newProductFixture() *productFixture {
	f := &productFixture{
		products: newStubProductRepo(),
		users:    newStubUserRepo(),
		events:   newStubEventRepo(),
		uow:      &stubUnitOfWork{},
		pub:      &stubPublisher{},
	}
	f.svc = NewProductService(f.products, f.users, f.events, f.uow, f.pub, discardLogger)
	return f
}

func (f *productFixture) addSeller(t *testing.T) *domain.User {
	t.Helper()
	u := domain.RehydrateUser(domain.NewUserID(), "bob", "hash", domain.RoleSeller, domain.ZeroMoney(), time.Now().UTC(), time.Now().UTC())
	f.users.add(u)
	return u
}

func (f *productFixture) addBuyer(t *testing.T) *domain.User {
	t.Helper()
	u := domain.RehydrateUser(domain.NewUserID(), "alice", "hash", domain.RoleBuyer, domain.ZeroMoney(), time.Now().UTC(), time.Now().UTC())
	f.users.add(u)
	return u
}

func createInput(sellerID string) ports.CreateProductInput {
	return ports.CreateProductInput{
		Name:            "cola",
		CostCents:       65,
		AmountAvailable: 10,
		SellerID:        sellerID,
	}
}

// ---------------------------------------------------------------------------
// CreateProduct
// ---------------------------------------------------------------------------

func TestProductService_Create_Success(t *testing.T) {
	f := newProductFixture()
	seller := f.addSeller(t)

	id, err := f.svc.CreateProduct(context.Background(), createInput(seller.ID().String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected product id")
	}
	if len(f.products.byID) != 1 {
		t.Errorf("expected 1 stored product, got %d", len(f.products.byID))
	}
}

func TestProductService_Create_WritesInitialTopUp(t *testing.T) {
	f := newProductFixture()
	seller := f.addSeller(t)

	_, err := f.svc.CreateProduct(context.Background(), createInput(seller.ID().String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.events.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(f.events.records))
	}
	record := f.events.records[0]
	if !record.IsTopUp() {
		t.Errorf("expected top_up record, got %s", record.EventType())
	}
	if record.Quantity() != 10 || record.TotalValue().Cents() != 650 {
		t.Errorf("record payload wrong: qty=%d total=%d", record.Quantity(), record.TotalValue().Cents())
	}
	if record.Description() != "Initial inventory for product: cola" {
		t.Errorf("unexpected description: %q", record.Description())
	}
}

func TestProductService_Create_ZeroStockSkipsTopUp(t *testing.T) {
	f := newProductFixture()
	seller := f.addSeller(t)

	input := createInput(seller.ID().String())
	input.AmountAvailable = 0

	_, err := f.svc.CreateProduct(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.events.records) != 0 {
		t.Errorf("zero initial stock must not produce an audit record, got %d", len(f.events.records))
	}
}

func TestProductService_Create_BuyerRejected(t *testing.T) {
	f := newProductFixture()
	buyer := f.addBuyer(t)

	_, err := f.svc.CreateProduct(context.Background(), createInput(buyer.ID().String()))
	if !errors.Is(err, domain.ErrSellerRoleRequired) {
		t.Fatalf("expected ErrSellerRoleRequired, got %v", err)
	}
}

func TestProductService_Create_DuplicateNamePerSeller(t *testing.T) {
	f := newProductFixture()
	seller := f.addSeller(t)

	if _, err := f.svc.CreateProduct(context.Background(), createInput(seller.ID().String())); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := f.svc.CreateProduct(context.Background(), createInput(seller.ID().String()))
	if !errors.Is(err, domain.ErrProductExists) {
		t.Fatalf("expected ErrProductExists, got %v", err)
	}
}

func TestProductService_Create_SameNameDifferentSellers(t *testing.T) {
	f := newProductFixture()
	sellerA := f.addSeller(t)
	sellerB := domain.RehydrateUser(domain.NewUserID(), "carol", "hash", domain.RoleSeller, domain.ZeroMoney(), time.Now().UTC(), time.Now().UTC())
	f.users.add(sellerB)

	if _, err := f.svc.CreateProduct(context.Background(), createInput(sellerA.ID().String())); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := f.svc.CreateProduct(context.Background(), createInput(sellerB.ID().String())); err != nil {
		t.Fatalf("second seller must reuse the name: %v", err)
	}
}

// ---------------------------------------------------------------------------
// UpdateProduct
// ---------------------------------------------------------------------------

func TestProductService_Update_PartialFields(t *testing.T) {
	f := newProductFixture()
	seller := f.addSeller(t)
	id, _ := f.svc.CreateProduct(context.Background(), createInput(seller.ID().String()))

	newName := "cola zero"
	err := f.svc.UpdateProduct(context.Background(), ports.UpdateProductInput{
		ProductID: id,
		SellerID:  seller.ID().String(),
		Name:      &newName,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	detail, _ := f.svc.GetProduct(context.Background(), id)
	if detail.Name != "cola zero" {
		t.Errorf("name not updated: %q", detail.Name)
	}
	if detail.CostCents != 65 || detail.AmountAvailable != 10 {
		t.Error("untouched fields must survive a partial update")
	}
}

func TestProductService_Update_StockGrowthWritesTopUp(t *testing.T) {
	f := newProductFixture()
	seller := f.addSeller(t)
	id, _ := f.svc.CreateProduct(context.Background(), createInput(seller.ID().String()))
	f.events.records = nil

	newAmount := 15
	err := f.svc.UpdateProduct(context.Background(), ports.UpdateProductInput{
		ProductID:       id,
		SellerID:        seller.ID().String(),
		AmountAvailable: &newAmount,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.events.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(f.events.records))
	}
	record := f.events.records[0]
	if !record.IsTopUp() || record.Quantity() != 5 {
		t.Errorf("expected top_up of 5, got %s qty=%d", record.EventType(), record.Quantity())
	}
}

func TestProductService_Update_StockShrinkWritesWithdraw(t *testing.T) {
	f := newProductFixture()
	seller := f.addSeller(t)
	id, _ := f.svc.CreateProduct(context.Background(), createInput(seller.ID().String()))
	f.events.records = nil

	newAmount := 4
	err := f.svc.UpdateProduct(context.Background(), ports.UpdateProductInput{
		ProductID:       id,
		SellerID:        seller.ID().String(),
		AmountAvailable: &newAmount,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.events.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(f.events.records))
	}
	record := f.events.records[0]
	if !record.IsWithdraw() || record.Quantity() != 6 {
		t.Errorf("expected withdraw of 6, got %s qty=%d", record.EventType(), record.Quantity())
	}
}

func TestProductService_Update_SameStockWritesNothing(t *testing.T) {
	f := newProductFixture()
	seller := f.addSeller(t)
	id, _ := f.svc.CreateProduct(context.Background(), createInput(seller.ID().String()))
	f.events.records = nil

	sameAmount := 10
	err := f.svc.UpdateProduct(context.Background(), ports.UpdateProductInput{
		ProductID:       id,
		SellerID:        seller.ID().String(),
		AmountAvailable: &sameAmount,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.events.records) != 0 {
		t.Errorf("unchanged stock must not produce an audit record, got %d", len(f.events.records))
	}
}

func TestProductService_Update_NonOwnerRejected(t *testing.T) {
	f := newProductFixture()
	seller := f.addSeller(t)
	stranger := domain.RehydrateUser(domain.NewUserID(), "mallory", "hash", domain.RoleSeller, domain.ZeroMoney(), time.Now().UTC(), time.Now().UTC())
	f.users.add(stranger)
	id, _ := f.svc.CreateProduct(context.Background(), createInput(seller.ID().String()))

	newName := "stolen"
	err := f.svc.UpdateProduct(context.Background(), ports.UpdateProductInput{
		ProductID: id,
		SellerID:  stranger.ID().String(),
		Name:      &newName,
	})
	if !errors.Is(err, domain.ErrNotProductOwner) {
		t.Fatalf("expected ErrNotProductOwner, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// DeleteProduct
// ---------------------------------------------------------------------------

func TestProductService_Delete_OwnerOnly(t *testing.T) {
	f := newProductFixture()
	seller := f.addSeller(t)
	stranger := domain.RehydrateUser(domain.NewUserID(), "mallory", "hash", domain.RoleSeller, domain.ZeroMoney(), time.Now().UTC(), time.Now().UTC())
	f.users.add(stranger)
	id, _ := f.svc.CreateProduct(context.Background(), createInput(seller.ID().String()))

	if err := f.svc.DeleteProduct(context.Background(), id, stranger.ID().String()); !errors.Is(err, domain.ErrNotProductOwner) {
		t.Fatalf("expected ErrNotProductOwner, got %v", err)
	}
	if err := f.svc.DeleteProduct(context.Background(), id, seller.ID().String()); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if len(f.products.byID) != 0 {
		t.Error("product must be gone after delete")
	}
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func TestProductService_ListBySeller(t *testing.T) {
	f := newProductFixture()
	seller := f.addSeller(t)
	other := domain.RehydrateUser(domain.NewUserID(), "carol", "hash", domain.RoleSeller, domain.ZeroMoney(), time.Now().UTC(), time.Now().UTC())
	f.users.add(other)

	_, _ = f.svc.CreateProduct(context.Background(), createInput(seller.ID().String()))
	input := createInput(other.ID().String())
	input.Name = "water"
	_, _ = f.svc.CreateProduct(context.Background(), input)

	mine, err := f.svc.ListBySeller(context.Background(), seller.ID().String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 1 || mine[0].Name != "cola" {
		t.Errorf("expected only the seller's product, got %+v", mine)
	}

	all, err := f.svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 products, got %d", len(all))
	}
}

func TestProductService_Get_UnknownProduct(t *testing.T) {
	f := newProductFixture()
	_, err := f.svc.GetProduct(context.Background(), domain.NewProductID().String())
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
