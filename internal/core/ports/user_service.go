package ports

import (
	"context"
	"time"
)

// CreateUserInput carries the data needed to register an account.
type CreateUserInput struct {
	Username string
	Password string
	Role     string
}

// UserDetail is the read view of a user account.
type UserDetail struct {
	ID           string
	Username     string
	Role         string
	DepositCents int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserService defines account use-cases.
type UserService interface {
	// CreateUser registers a new account and returns its id.
	CreateUser(ctx context.Context, input CreateUserInput) (string, error)
	GetUser(ctx context.Context, id string) (*UserDetail, error)
}

// AuthService issues access tokens for registered accounts.
type AuthService interface {
	// Login verifies credentials and returns a signed token plus the user view.
	Login(ctx context.Context, username, password string) (string, *UserDetail, error)
}
