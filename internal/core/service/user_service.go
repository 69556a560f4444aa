package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vendhub/vending-machine/internal/core/domain"
	"github.com/vendhub/vending-machine/internal/core/ports"
)

type userService struct {
	users     ports.UserRepository
	publisher ports.EventPublisher
	log       zerolog.Logger
}

// NewUserService returns the UserService implementation.
func NewUserService(users ports.UserRepository, publisher ports.EventPublisher, log zerolog.Logger) ports.UserService {
	return &userService{users: users, publisher: publisher, log: log}
}

// CreateUser registers an account with a bcrypt-hashed password and a zero
// deposit.
func (s *userService) CreateUser(ctx context.Context, input ports.CreateUserInput) (string, error) {
	if input.Username == "" || input.Password == "" {
		return "", domain.ErrInvalidCredentials
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return "", err
	}

	taken, err := s.users.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	if taken {
		return "", domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("create user: hash password: %w", err)
	}

	user, err := domain.NewUser(domain.NewUserID(), input.Username, string(hash), role, time.Now().UTC())
	if err != nil {
		return "", err
	}

	if err := s.users.Save(ctx, user); err != nil {
		s.log.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return "", fmt.Errorf("create user: %w", err)
	}

	if s.publisher != nil {
		s.publisher.Publish(user.Events()...)
		user.ClearEvents()
	}

	s.log.Info().
		Str("user_id", user.ID().String()).
		Str("role", role.String()).
		Msg("user created")

	return user.ID().String(), nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*ports.UserDetail, error) {
	userID, err := domain.ParseUserID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	detail := toUserDetail(user)
	return &detail, nil
}

func toUserDetail(u *domain.User) ports.UserDetail {
	return ports.UserDetail{
		ID:           u.ID().String(),
		Username:     u.Username(),
		Role:         u.Role().String(),
		DepositCents: u.Deposit().Cents(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
	}
}
