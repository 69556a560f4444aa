package domain

// Event is an immutable fact recorded by an aggregate during a mutation.
// Aggregates accumulate events in memory; the caller drains them via
// Events/ClearEvents after the aggregate has been persisted.
type Event interface {
	// EventName is a stable dotted identifier, e.g. "user.deposit_added".
	EventName() string
	// AggregateID is the id of the aggregate that emitted the event.
	AggregateID() string
}

// UserCreated is emitted once when a user account is created.
type UserCreated struct {
	UserID   string
	Username string
	Role     Role
}

func (e UserCreated) EventName() string   { return "user.created" }
func (e UserCreated) AggregateID() string { return e.UserID }

// DepositAdded is emitted when a buyer inserts a coin.
type DepositAdded struct {
	UserID       string
	AmountCents  int
	BalanceCents int
}

func (e DepositAdded) EventName() string   { return "user.deposit_added" }
func (e DepositAdded) AggregateID() string { return e.UserID }

// ProductCreated is emitted once when a seller registers a product.
type ProductCreated struct {
	ProductID       string
	Name            string
	CostCents       int
	AmountAvailable int
	SellerID        string
}

func (e ProductCreated) EventName() string   { return "product.created" }
func (e ProductCreated) AggregateID() string { return e.ProductID }

// ProductPurchased is emitted when stock is decremented by a purchase.
type ProductPurchased struct {
	ProductID string
	Name      string
	Quantity  int
	Remaining int
	CostCents int
	SellerID  string
}

func (e ProductPurchased) EventName() string   { return "product.purchased" }
func (e ProductPurchased) AggregateID() string { return e.ProductID }
