package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vendhub/vending-machine/internal/core/domain"
	"github.com/vendhub/vending-machine/internal/core/ports"
)

type authService struct {
	users     ports.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthService returns the AuthService implementation.
func NewAuthService(users ports.UserRepository, jwtSecret string, tokenTTL time.Duration) ports.AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Login verifies the password and issues an HS256 token carrying the user's
// id, username, and role.
func (s *authService) Login(ctx context.Context, username, password string) (string, *ports.UserDetail, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		// Hide whether the account exists.
		return "", nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("login: sign token: %w", err)
	}

	detail := toUserDetail(user)
	return token, &detail, nil
}

func (s *authService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID().String(),
		"username": user.Username(),
		"role":     user.Role().String(),
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
