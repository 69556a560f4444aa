package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vendhub/vending-machine/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID      map[string]*domain.User
	saveCalls int
	saveErr   error // if set, Save returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) add(u *domain.User) {
	r.byID[u.ID().String()] = u
}

func (r *stubUserRepo) FindByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	u, ok := r.byID[id.String()]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Username() == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Save(_ context.Context, u *domain.User) error {
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.byID[u.ID().String()] = u
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id domain.UserID) error {
	if _, ok := r.byID[id.String()]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id.String())
	return nil
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range r.byID {
		if u.Username() == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	all := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		all = append(all, u)
	}
	return all, nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

type stubProductRepo struct {
	byID      map[string]*domain.Product
	saveCalls int
	saveErr   error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) add(p *domain.Product) {
	r.byID[p.ID().String()] = p
}

func (r *stubProductRepo) FindByID(_ context.Context, id domain.ProductID) (*domain.Product, error) {
	p, ok := r.byID[id.String()]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindBySellerIDAndName(_ context.Context, sellerID domain.UserID, name string) (*domain.Product, error) {
	for _, p := range r.byID {
		if p.SellerID().Equals(sellerID) && p.Name() == name {
			return p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *stubProductRepo) FindBySellerID(_ context.Context, sellerID domain.UserID) ([]*domain.Product, error) {
	var matched []*domain.Product
	for _, p := range r.byID {
		if p.SellerID().Equals(sellerID) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (r *stubProductRepo) FindAll(_ context.Context) ([]*domain.Product, error) {
	all := make([]*domain.Product, 0, len(r.byID))
	for _, p := range r.byID {
		all = append(all, p)
	}
	return all, nil
}

func (r *stubProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.byID[p.ID().String()] = p
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id domain.ProductID) error {
	if _, ok := r.byID[id.String()]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.byID, id.String())
	return nil
}

type stubEventRepo struct {
	records []*domain.ProductEvent
	saveErr error
}

func newStubEventRepo() *stubEventRepo {
	return &stubEventRepo{}
}

func (r *stubEventRepo) Save(_ context.Context, e *domain.ProductEvent) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.records = append(r.records, e)
	return nil
}

func (r *stubEventRepo) FindByProductID(_ context.Context, productID domain.ProductID) ([]*domain.ProductEvent, error) {
	var matched []*domain.ProductEvent
	for _, e := range r.records {
		if e.ProductID().Equals(productID) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (r *stubEventRepo) FindByProductIDAndType(_ context.Context, productID domain.ProductID, eventType domain.ProductEventType) ([]*domain.ProductEvent, error) {
	var matched []*domain.ProductEvent
	for _, e := range r.records {
		if e.ProductID().Equals(productID) && e.EventType() == eventType {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (r *stubEventRepo) FindByCreatedBy(_ context.Context, userID domain.UserID) ([]*domain.ProductEvent, error) {
	var matched []*domain.ProductEvent
	for _, e := range r.records {
		if e.CreatedBy().Equals(userID) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (r *stubEventRepo) FindByDateRange(_ context.Context, from, to time.Time) ([]*domain.ProductEvent, error) {
	var matched []*domain.ProductEvent
	for _, e := range r.records {
		if !e.CreatedAt().Before(from) && !e.CreatedAt().After(to) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (r *stubEventRepo) AuditTrail(_ context.Context, productID domain.ProductID, limit int) ([]*domain.ProductEvent, error) {
	matched, _ := r.FindByProductID(context.Background(), productID)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// ---------------------------------------------------------------------------
// Transaction & publisher stubs
// ---------------------------------------------------------------------------

// stubUnitOfWork runs the function directly; failErr aborts before it runs.
type stubUnitOfWork struct {
	calls   int
	failErr error
}

func (u *stubUnitOfWork) Execute(ctx context.Context, fn func(txCtx context.Context) error) error {
	u.calls++
	if u.failErr != nil {
		return u.failErr
	}
	return fn(ctx)
}

type stubPublisher struct {
	published []domain.Event
}

func (p *stubPublisher) Publish(events ...domain.Event) {
	p.published = append(p.published, events...)
}
