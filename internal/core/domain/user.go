package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("username already taken")
var ErrUsernameRequired = errors.New("username is required")
var ErrBuyerRoleRequired = errors.New("operation requires the buyer role")
var ErrSellerRoleRequired = errors.New("operation requires the seller role")
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is the account aggregate root. A buyer carries a coin deposit and may
// purchase products; a seller manages products and never carries a deposit.
// Mutating methods append domain events which the caller drains after a
// successful save.
type User struct {
	id           UserID
	username     string
	passwordHash string
	role         Role
	deposit      Money
	createdAt    time.Time
	updatedAt    time.Time

	events []Event
}

// NewUser creates a user account with a zero deposit and records a
// UserCreated event.
func NewUser(id UserID, username, passwordHash string, role Role, now time.Time) (*User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if _, err := ParseRole(role.String()); err != nil {
		return nil, err
	}

	u := &User{
		id:           id,
		username:     username,
		passwordHash: passwordHash,
		role:         role,
		deposit:      ZeroMoney(),
		createdAt:    now,
		updatedAt:    now,
	}
	u.record(UserCreated{UserID: id.String(), Username: username, Role: role})
	return u, nil
}

// RehydrateUser rebuilds a user from persisted state without emitting events.
func RehydrateUser(id UserID, username, passwordHash string, role Role, deposit Money, createdAt, updatedAt time.Time) *User {
	return &User{
		id:           id,
		username:     username,
		passwordHash: passwordHash,
		role:         role,
		deposit:      deposit,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (u *User) ID() UserID           { return u.id }
func (u *User) Username() string     { return u.username }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Role() Role           { return u.role }
func (u *User) Deposit() Money       { return u.deposit }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// CanBuyProduct reports whether the user may deposit, spend, and purchase.
func (u *User) CanBuyProduct() bool {
	return u.role.IsBuyer()
}

// CanManageProducts reports whether the user may create and maintain products.
func (u *User) CanManageProducts() bool {
	return u.role.IsSeller()
}

// AddDeposit adds a coin to the buyer's balance.
func (u *User) AddDeposit(amount Money) error {
	if !u.CanBuyProduct() {
		return fmt.Errorf("add deposit: %w", ErrBuyerRoleRequired)
	}
	u.deposit = u.deposit.Add(amount)
	u.touch()
	u.record(DepositAdded{
		UserID:       u.id.String(),
		AmountCents:  amount.Cents(),
		BalanceCents: u.deposit.Cents(),
	})
	return nil
}

// SpendMoney deducts amount from the buyer's balance.
func (u *User) SpendMoney(amount Money) error {
	if !u.CanBuyProduct() {
		return fmt.Errorf("spend money: %w", ErrBuyerRoleRequired)
	}
	remaining, err := u.deposit.Subtract(amount)
	if err != nil {
		return err
	}
	u.deposit = remaining
	u.touch()
	return nil
}

// ResetDeposit returns the buyer's balance to zero.
func (u *User) ResetDeposit() error {
	if !u.CanBuyProduct() {
		return fmt.Errorf("reset deposit: %w", ErrBuyerRoleRequired)
	}
	u.deposit = ZeroMoney()
	u.touch()
	return nil
}

// Events returns the domain events accumulated since the last ClearEvents.
func (u *User) Events() []Event {
	return u.events
}

// ClearEvents drops accumulated events. Call after the aggregate is persisted.
func (u *User) ClearEvents() {
	u.events = nil
}

func (u *User) record(e Event) {
	u.events = append(u.events, e)
}

func (u *User) touch() {
	u.updatedAt = time.Now().UTC()
}
